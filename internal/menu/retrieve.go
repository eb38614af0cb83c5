package menu

import (
	"fmt"
	"strings"

	"savehaven/internal/haven"
)

type answer int

const (
	answerYes answer = iota
	answerNo
	answerAll
)

func parseAnswer(s string) (answer, bool) {
	switch strings.ToLower(s) {
	case "", "y", "yes":
		return answerYes, true
	case "n", "no":
		return answerNo, true
	case "a", "all":
		return answerAll, true
	default:
		return 0, false
	}
}

// retrieveFlow shows a game's saves and offers to restore each one.
// Answering "a" restores the current save and every remaining one to its
// original location without further questions.
func (m *Menu) retrieveFlow() error {
	title, err := m.prompt("Game title: ")
	if err != nil {
		return err
	}

	result, err := m.backend.Retrieve(title)
	if err != nil {
		return err
	}

	m.printGame(result)
	if len(result.Saves) == 0 {
		fmt.Fprintln(m.out, "No saves recorded.")
		return nil
	}

	all := false
	for _, record := range result.Saves {
		m.printSave(record)

		if !all {
			a, err := m.askRestore()
			if err != nil {
				return err
			}
			if a == answerNo {
				continue
			}
			all = a == answerAll
		}

		dst := record.Location.Description
		if !all {
			entered, err := m.prompt(fmt.Sprintf("Restore to [%s]: ", record.Location.Description))
			if err != nil {
				return err
			}
			if entered != "" {
				dst = entered
			}
		}

		restored, err := m.backend.Restore(record.Save.ID, dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(m.out, "Restored to %s\n", restored)
	}
	return nil
}

func (m *Menu) askRestore() (answer, error) {
	for {
		s, err := m.prompt("Restore this save? (Y/n/a): ")
		if err != nil {
			return answerNo, err
		}
		if a, ok := parseAnswer(s); ok {
			return a, nil
		}
		fmt.Fprintln(m.out, "Please answer y, n or a.")
	}
}

func (m *Menu) printGame(g *haven.GameSaves) {
	fmt.Fprintln(m.out)
	fmt.Fprintf(m.out, "%s\n", g.Game.Title)
	if g.Game.Publisher != "" {
		fmt.Fprintf(m.out, "  Publisher:    %s\n", g.Game.Publisher)
	}
	fmt.Fprintf(m.out, "  Release date: %s\n", haven.FormatReleaseDate(g.Game.ReleaseDate))
	fmt.Fprintf(m.out, "  Saves:        %d\n", len(g.Saves))
}

func (m *Menu) printSave(r *haven.SaveRecord) {
	platform := "-"
	if r.Platform != nil {
		platform = r.Platform.PlatformName
	}

	fmt.Fprintln(m.out)
	fmt.Fprintf(m.out, "Save #%d\n", r.Save.ID)
	fmt.Fprintf(m.out, "  Platform:  %s\n", platform)
	if r.Save.Metadata != "" {
		fmt.Fprintf(m.out, "  Notes:     %s\n", r.Save.Metadata)
	}
	fmt.Fprintf(m.out, "  Backed up: %s\n", r.Save.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(m.out, "  Stored at: %s\n", r.Location.LocationPath)
	fmt.Fprintf(m.out, "  Original:  %s\n", r.Location.Description)
}
