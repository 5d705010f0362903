package main

import (
	"context"
	"log/slog"
	"os"

	"biblio/config"
	"biblio/internal/delivery"
	"biblio/internal/delivery/http"
	httpmw "biblio/internal/delivery/http/middleware"
	"biblio/internal/delivery/http/router/handler"
	sharedmw "biblio/internal/delivery/middleware"
	"biblio/internal/domain/repository"
	"biblio/internal/domain/service"
	"biblio/internal/infra/auth"
	"biblio/internal/infra/crypto"
	logs "biblio/internal/infra/log"
	"biblio/internal/infra/persistence/postgres"
	"biblio/internal/infra/settings"
	"biblio/internal/usecase"
	"biblio/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewCardRepository,
			postgres.NewSessionStoreFactory,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			newEncryptionSettings,
			newCipherFactory,
		),
	)
}

// newEncryptionSettings stores the catalog encryption scheme in the same
// yaml file the rest of the configuration is loaded from.
func newEncryptionSettings(cfg *config.Config) service.EncryptionSettings {
	return settings.NewFileStore(cfg.Path)
}

func newCipherFactory() service.CipherFactory {
	return crypto.NewCipher
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewIdentityService,
			impl.NewCatalogService,
			newAuthUsecase,
		),
	)
}

// newAuthUsecase binds the privacy-mode switch from configuration.
func newAuthUsecase(
	identity usecase.IdentityUsecase,
	userRepo repository.UserRepository,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return impl.NewAuthService(identity, userRepo, hasher, tokenService, cfg.Authentication.PrivacyMode, logger)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			sharedmw.NewRequestIDMiddleware,
			sharedmw.NewLoggerMiddleware,
			httpmw.NewSessionMiddleware,
			httpmw.NewAuthMiddleware,
			httpmw.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
