// Package settings implements the durable store for the catalog password
// protection scheme, backed by the same yaml file the application loads its
// configuration from.
package settings

import (
	"os"
	"path/filepath"

	"biblio/internal/domain/entity"
	"biblio/internal/domain/service"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Configuration keys for the catalog credential protection scheme.
const (
	keyEncrypt   = "authentication.encryptCatalogPasswords"
	keyAlgorithm = "authentication.catalogEncryptionAlgorithm"
	keyKey       = "authentication.catalogEncryptionKey"
)

// FileStore reads and rewrites the encryption settings in a yaml config
// file. Reads go to the file every time so that a freshly persisted value is
// what a re-run observes. Writes replace the whole file atomically.
type FileStore struct {
	path string
}

// NewFileStore creates a store over the given yaml file.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

var _ service.EncryptionSettings = (*FileStore)(nil)

// Current returns the persisted setting. Encryption turned off, a missing
// algorithm, or a missing key all report the disabled variant.
func (s *FileStore) Current() (entity.EncryptionSetting, error) {
	k, err := s.load()
	if err != nil {
		return entity.EncryptionSetting{}, err
	}

	if !k.Bool(keyEncrypt) {
		return entity.EncryptionDisabled(), nil
	}

	algorithm := k.String(keyAlgorithm)
	key := k.String(keyKey)
	if algorithm == "" || key == "" {
		// Encryption flagged on but unusable without both parts; treat as
		// never enabled.
		return entity.EncryptionDisabled(), nil
	}

	return entity.EncryptionWith(algorithm, key), nil
}

// Persist durably records the given setting, rewriting the yaml file.
func (s *FileStore) Persist(setting entity.EncryptionSetting) error {
	k, err := s.load()
	if err != nil {
		return err
	}

	values := map[string]any{
		keyEncrypt:   setting.Enabled(),
		keyAlgorithm: setting.Algorithm(),
		keyKey:       setting.Key(),
	}
	for key, value := range values {
		if err := k.Set(key, value); err != nil {
			return errors.Wrapf(err, "failed to set %s", key)
		}
	}

	out, err := k.Marshal(yaml.Parser())
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	return s.writeAtomic(out)
}

func (s *FileStore) load() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", s.path)
	}

	return k, nil
}

// writeAtomic writes to a temp file in the same directory and renames it
// over the target, so a crash mid-write never leaves a torn config.
func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp config file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return errors.Wrap(err, "failed to write temp config file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return errors.Wrap(err, "failed to sync temp config file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return errors.Wrap(err, "failed to close temp config file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)

		return errors.Wrap(err, "failed to replace config file")
	}

	return nil
}
