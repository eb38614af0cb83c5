package testutil

import (
	"savehaven/internal/encryption"
)

// NewTestCodec returns a codec over the deterministic test encryptor.
// Stored bytes differ from the plaintext, so tests can tell encoded copies apart.
func NewTestCodec() *encryption.Codec {
	return encryption.NewCodec(encryption.NewTestEncryptor(), func() (string, error) {
		return "", nil
	})
}
