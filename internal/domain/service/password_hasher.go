package service

// PasswordHasher defines the interface for local account password hashing
// and verification. This abstracts the underlying hashing algorithm
// (e.g., bcrypt), keeping the domain pure. Catalog passwords are not hashed:
// they must round-trip to the external catalog, so they go through a Cipher.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash to see if they match.
	Check(password, hash string) bool
}
