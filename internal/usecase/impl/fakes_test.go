package impl

import (
	"context"
	"sync"

	"biblio/internal/domain/entity"
	"biblio/internal/domain/repository"
	"biblio/internal/domain/service"

	"github.com/google/uuid"
)

// In-memory test doubles for the repository and service contracts. Error
// fields, when set, are returned instead of touching the maps so failure
// paths can be exercised per call site.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User

	findErr   error
	listErr   error
	createErr error
	// updateErrs injects a failure for specific user IDs.
	updateErrs map[uuid.UUID]error
	updates    []uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:      make(map[uuid.UUID]*entity.User),
		updateErrs: make(map[uuid.UUID]error),
	}
}

func (f *fakeUserRepo) add(user *entity.User) *entity.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user

	return user
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if user, ok := f.users[id]; ok {
		copied := *user

		return &copied, nil
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, user := range f.users {
		if user.Username == username {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindByCatalogID(_ context.Context, catalogID string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, user := range f.users {
		if user.CatalogID == catalogID {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) ListWithCatalogUsername(_ context.Context) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []*entity.User
	for _, user := range f.users {
		if user.CatalogUsername != "" {
			copied := *user
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.add(user)

	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErrs[user.ID]; err != nil {
		return err
	}
	copied := *user
	f.users[user.ID] = &copied
	f.updates = append(f.updates, user.ID)

	return nil
}

type fakeCardRepo struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*entity.LibraryCard

	listErr    error
	updateErrs map[uuid.UUID]error
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{
		cards:      make(map[uuid.UUID]*entity.LibraryCard),
		updateErrs: make(map[uuid.UUID]error),
	}
}

func (f *fakeCardRepo) add(card *entity.LibraryCard) *entity.LibraryCard {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	f.cards[card.ID] = card

	return card
}

func (f *fakeCardRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.LibraryCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if card, ok := f.cards[id]; ok {
		copied := *card

		return &copied, nil
	}

	return nil, repository.ErrCardNotFound
}

func (f *fakeCardRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.LibraryCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.LibraryCard
	for _, card := range f.cards {
		if card.UserID == userID {
			copied := *card
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (f *fakeCardRepo) ListWithCatalogUsername(_ context.Context) ([]*entity.LibraryCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []*entity.LibraryCard
	for _, card := range f.cards {
		if card.CatalogUsername != "" {
			copied := *card
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (f *fakeCardRepo) Create(_ context.Context, card *entity.LibraryCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(card)

	return nil
}

func (f *fakeCardRepo) Update(_ context.Context, card *entity.LibraryCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErrs[card.ID]; err != nil {
		return err
	}
	copied := *card
	f.cards[card.ID] = &copied

	return nil
}

// memSessionStore implements service.SessionStore over a plain map.
type memSessionStore struct {
	values map[string]string

	getErr error
	setErr error
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{values: make(map[string]string)}
}

func (s *memSessionStore) Get(_ context.Context, name string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	value, ok := s.values[name]

	return value, ok, nil
}

func (s *memSessionStore) Set(_ context.Context, name, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[name] = value

	return nil
}

func (s *memSessionStore) Unset(_ context.Context, name string) error {
	delete(s.values, name)

	return nil
}

// fakeSettings implements service.EncryptionSettings in memory and records
// every persisted setting in order.
type fakeSettings struct {
	setting entity.EncryptionSetting

	currentErr error
	persistErr error
	persisted  []entity.EncryptionSetting
}

func (f *fakeSettings) Current() (entity.EncryptionSetting, error) {
	if f.currentErr != nil {
		return entity.EncryptionSetting{}, f.currentErr
	}

	return f.setting, nil
}

func (f *fakeSettings) Persist(setting entity.EncryptionSetting) error {
	if f.persistErr != nil {
		return f.persistErr
	}
	f.setting = setting
	f.persisted = append(f.persisted, setting)

	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.CardRepository = (*fakeCardRepo)(nil)
var _ service.SessionStore = (*memSessionStore)(nil)
var _ service.EncryptionSettings = (*fakeSettings)(nil)
