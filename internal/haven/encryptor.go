package haven

import "io"

// Codec transforms save file bytes on their way into and out of the managed store.
// A nil Codec means files are stored verbatim.
type Codec interface {
	// Encode reads plaintext from r and writes the stored form to w.
	Encode(r io.Reader, w io.Writer) error

	// Decode reads the stored form from r and writes plaintext to w.
	Decode(r io.Reader, w io.Writer) error
}

// Encryptor handles encryption of backup copies and unlocking for decryption.
// Encryption uses the public key only, so no user intervention is required.
// Decryption requires a passphrase to unlock the private key, producing a
// DecryptionContext for the session.
type Encryptor interface {
	// Setup performs one-time key generation. Called by `savehaven config keys`.
	// Generates a key pair, stores the public key in plaintext, and encrypts
	// the private key with the provided passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase and returns a
	// DecryptionContext that can decrypt data for the duration of the session.
	// Returns an error if the passphrase is incorrect.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist at configured paths.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for the duration
// of a session. The unlocked key is never written to disk.
type DecryptionContext interface {
	// Decrypt decrypts data read from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
