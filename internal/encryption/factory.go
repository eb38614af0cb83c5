package encryption

import (
	"fmt"

	"savehaven/internal/config"
	"savehaven/internal/haven"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// Type "none" still yields an age encryptor so that `config keys` can prepare keys
// before encryption is switched on.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (haven.Encryptor, error) {
	switch cfg.Type {
	case "age", "none", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}

// NewCodecFromConfig returns the codec applied to managed copies,
// or nil when copies are stored verbatim.
func NewCodecFromConfig(cfg config.EncryptionConfig, passphrase PassphraseFunc) (haven.Codec, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	}
	encryptor, err := NewEncryptorFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewCodec(encryptor, passphrase), nil
}
