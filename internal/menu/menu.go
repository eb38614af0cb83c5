// Package menu implements the interactive prompt loop.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"savehaven/internal/haven"
)

// Backend is what the menu needs from the application.
type Backend interface {
	AddSave(req haven.AddSaveRequest) (*haven.SaveRecord, error)
	Retrieve(title string) (*haven.GameSaves, error)
	Restore(saveID int64, dst string) (string, error)
}

type state int

const (
	stateMain state = iota
	stateAdd
	stateRetrieve
	stateExit
)

// Main menu choices.
const (
	ChoiceAdd      = "1"
	ChoiceRetrieve = "2"
	ChoiceExit     = "3"
)

const timeLayout = "2006-01-02 15:04"

// Menu is a single-threaded read-prompt-dispatch loop.
type Menu struct {
	backend Backend
	in      *bufio.Reader
	out     io.Writer
	logger  haven.Logger
}

// New creates a Menu reading answers from in and writing prompts to out.
func New(backend Backend, in io.Reader, out io.Writer, logger haven.Logger) *Menu {
	if logger == nil {
		logger = haven.NewNopLogger()
	}
	return &Menu{
		backend: backend,
		in:      bufio.NewReader(in),
		out:     out,
		logger:  logger,
	}
}

// Run shows the main menu until the user exits or input ends.
// Recoverable errors are reported and the loop goes back to the main menu.
// Any other error ends the loop and is returned.
func (m *Menu) Run() error {
	st := stateMain
	for st != stateExit {
		var err error
		switch st {
		case stateMain:
			st, err = m.mainMenu()
		case stateAdd:
			err = m.addFlow()
			st = stateMain
		case stateRetrieve:
			err = m.retrieveFlow()
			st = stateMain
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			st = stateExit
		case haven.IsRecoverable(err):
			m.logger.Warn("flow abandoned", "error", err)
			fmt.Fprintf(m.out, "Error: %v\n", err)
		default:
			m.logger.Error("fatal error", "error", err)
			return err
		}
	}
	fmt.Fprintln(m.out, "Goodbye.")
	return nil
}

func (m *Menu) mainMenu() (state, error) {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "savehaven")
	fmt.Fprintln(m.out, "  1) Add save")
	fmt.Fprintln(m.out, "  2) Retrieve save")
	fmt.Fprintln(m.out, "  3) Exit")

	choice, err := m.prompt("Choice: ")
	if err != nil {
		return stateExit, err
	}
	switch choice {
	case ChoiceAdd:
		return stateAdd, nil
	case ChoiceRetrieve:
		return stateRetrieve, nil
	case ChoiceExit:
		return stateExit, nil
	default:
		fmt.Fprintln(m.out, "Invalid choice")
		return stateMain, nil
	}
}

// prompt writes label and reads one trimmed line. io.EOF is returned only
// when input ended before anything was typed.
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
