package hash

// Hash hashes plaintext secrets and verifies candidates against stored hashes.
type Hash interface {
	// Hash returns the hash of the input string.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the stored hash.
	Verify(hashed, plaintext string) bool
}
