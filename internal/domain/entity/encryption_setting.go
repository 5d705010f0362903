package entity

// EncryptionSetting describes how catalog passwords are protected at rest.
// The zero value means encryption is disabled. When enabled, it binds an
// algorithm name to the key material used for it. The pairing replaces the
// configuration file's historical "none" sentinel: inside the domain the
// disabled state is a variant, not a magic string.
type EncryptionSetting struct {
	enabled   bool
	algorithm string
	key       string
}

// EncryptionDisabled returns the setting for unencrypted storage.
func EncryptionDisabled() EncryptionSetting {
	return EncryptionSetting{}
}

// EncryptionWith returns the setting for encrypted storage under the given
// algorithm and key.
func EncryptionWith(algorithm, key string) EncryptionSetting {
	return EncryptionSetting{enabled: true, algorithm: algorithm, key: key}
}

// Enabled reports whether catalog passwords are encrypted.
func (s EncryptionSetting) Enabled() bool {
	return s.enabled
}

// Algorithm returns the cipher algorithm name. Empty when disabled.
func (s EncryptionSetting) Algorithm() string {
	return s.algorithm
}

// Key returns the key material. Empty when disabled.
func (s EncryptionSetting) Key() string {
	return s.key
}

// Equal reports whether two settings describe the same protection scheme.
func (s EncryptionSetting) Equal(other EncryptionSetting) bool {
	return s == other
}
