package encryption

import (
	"fmt"
	"io"

	"savehaven/internal/haven"
)

// PassphraseFunc supplies the passphrase that unlocks the private key.
type PassphraseFunc func() (string, error)

// Codec adapts an Encryptor to haven.Codec.
// Encoding needs only the public key. The private key is unlocked on the first
// Decode and kept for the rest of the session.
type Codec struct {
	encryptor  haven.Encryptor
	passphrase PassphraseFunc
	unlocked   haven.DecryptionContext
}

var _ haven.Codec = (*Codec)(nil)

// NewCodec wraps encryptor. passphrase is called at most once per successful unlock.
func NewCodec(encryptor haven.Encryptor, passphrase PassphraseFunc) *Codec {
	return &Codec{encryptor: encryptor, passphrase: passphrase}
}

func (c *Codec) Encode(r io.Reader, w io.Writer) error {
	if !c.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys not found, run 'savehaven config keys'")
	}
	return c.encryptor.Encrypt(r, w)
}

func (c *Codec) Decode(r io.Reader, w io.Writer) error {
	if c.unlocked == nil {
		if c.passphrase == nil {
			return fmt.Errorf("no passphrase source to unlock the private key")
		}
		passphrase, err := c.passphrase()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		ctx, err := c.encryptor.Unlock(passphrase)
		if err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
		c.unlocked = ctx
	}
	return c.unlocked.Decrypt(r, w)
}
