package postgres

import (
	"context"

	"biblio/internal/domain/entity"
	domainerrors "biblio/internal/domain/errors"
	"biblio/internal/domain/repository"
	"biblio/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// cardRepository implements the domain.CardRepository interface using GORM.
type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository is the constructor for cardRepository.
func NewCardRepository(db *gorm.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

// FindByID retrieves a single card by its unique ID.
func (repo *cardRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LibraryCard, error) {
	var cardM model.LibraryCardModel
	err := repo.db.WithContext(ctx).Where("id = ?", id).First(&cardM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCardNotFound
		}

		return nil, errors.Wrap(err, "failed to find card by id")
	}

	return toCardDomain(&cardM), nil
}

// FindByUserID retrieves all cards belonging to the given user.
func (repo *cardRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.LibraryCard, error) {
	var cardMs []model.LibraryCardModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&cardMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find cards by user id")
	}

	return toCardDomainSlice(cardMs), nil
}

// ListWithCatalogUsername returns every card carrying a catalog login.
func (repo *cardRepository) ListWithCatalogUsername(ctx context.Context) ([]*entity.LibraryCard, error) {
	var cardMs []model.LibraryCardModel
	err := repo.db.WithContext(ctx).
		Where("cat_username IS NOT NULL AND cat_username <> ''").
		Order("created_at").
		Find(&cardMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cards with catalog username")
	}

	return toCardDomainSlice(cardMs), nil
}

// Create persists a new card entity to the database.
func (repo *cardRepository) Create(ctx context.Context, card *entity.LibraryCard) error {
	cardM := fromCardDomain(card)

	if err := repo.db.WithContext(ctx).Create(cardM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create card")
	}

	card.ID = cardM.ID
	card.CreatedAt = cardM.CreatedAt
	card.UpdatedAt = cardM.UpdatedAt

	return nil
}

// Update modifies an existing card entity in the database.
func (repo *cardRepository) Update(ctx context.Context, card *entity.LibraryCard) error {
	cardM := fromCardDomain(card)

	if err := repo.db.WithContext(ctx).Save(cardM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update card")
	}

	card.UpdatedAt = cardM.UpdatedAt

	return nil
}

// --- Mapper Functions ---

func toCardDomain(data *model.LibraryCardModel) *entity.LibraryCard {
	if data == nil {
		return nil
	}

	return &entity.LibraryCard{
		ID:              data.ID,
		UserID:          data.UserID,
		CardName:        data.CardName,
		CatalogUsername: data.CatUsername,
		RawPassword:     data.RawSavedPassword,
		PasswordEnc:     data.CatPassEnc,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func toCardDomainSlice(data []model.LibraryCardModel) []*entity.LibraryCard {
	cards := make([]*entity.LibraryCard, 0, len(data))
	for i := range data {
		cards = append(cards, toCardDomain(&data[i]))
	}

	return cards
}

func fromCardDomain(data *entity.LibraryCard) *model.LibraryCardModel {
	if data == nil {
		return nil
	}

	return &model.LibraryCardModel{
		ID:               data.ID,
		UserID:           data.UserID,
		CardName:         data.CardName,
		CatUsername:      data.CatalogUsername,
		RawSavedPassword: data.RawPassword,
		CatPassEnc:       data.PasswordEnc,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}
