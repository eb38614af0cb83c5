package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"savehaven/internal/encryption"
)

// PassphraseEnv supplies the passphrase when stdin is not a terminal.
const PassphraseEnv = "SAVEHAVEN_PASSPHRASE"

// TerminalPassphrase returns a PassphraseFunc that prompts on out and reads from in
// without echo. When in is not a terminal the passphrase is taken from
// $SAVEHAVEN_PASSPHRASE; in itself is never read, since the menu owns its buffer.
func TerminalPassphrase(prompt string, in *os.File, out io.Writer) encryption.PassphraseFunc {
	return func() (string, error) {
		if !term.IsTerminal(int(in.Fd())) {
			if p, ok := os.LookupEnv(PassphraseEnv); ok {
				return p, nil
			}
			return "", errors.New("stdin is not a terminal and " + PassphraseEnv + " is not set")
		}

		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}
}
