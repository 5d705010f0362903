package service

import "biblio/internal/domain/entity"

// EncryptionSettings is the durable store for the catalog password
// protection scheme. Persist must complete before any stored credential is
// rewritten under a new scheme: the configuration always names a key that
// can open what the database holds, or a newer one.
type EncryptionSettings interface {
	// Current returns the persisted setting. A store with encryption turned
	// off, or with no key on file, reports the disabled variant.
	Current() (entity.EncryptionSetting, error)

	// Persist durably records the given setting.
	Persist(setting entity.EncryptionSetting) error
}
