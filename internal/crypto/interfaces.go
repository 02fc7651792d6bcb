// Package crypto holds key-derivation helpers for the biometric session
// gate. The session token signing key is derived on demand from the device
// secret and a per-installation salt; it never leaves process memory and is
// never persisted.
package crypto

// KeyChainService derives and generates the key material used to sign
// biometric session tokens.
type KeyChainService interface {
	// GenerateSalt returns a fresh random 16-byte salt.
	GenerateSalt() ([]byte, error)

	// DeriveSigningKey derives a 256-bit signing key from the device secret
	// and salt. Deterministic: the same inputs always yield the same key.
	DeriveSigningKey(deviceSecret string, salt []byte) []byte
}
