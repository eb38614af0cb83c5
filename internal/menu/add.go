package menu

import (
	"fmt"

	"savehaven/internal/haven"
)

// addFlow collects the fields of a new save and adds it.
// A bad release date ends the flow before anything is copied or written.
func (m *Menu) addFlow() error {
	var req haven.AddSaveRequest
	var err error

	if req.Title, err = m.prompt("Game title: "); err != nil {
		return err
	}
	if req.Publisher, err = m.prompt("Publisher: "); err != nil {
		return err
	}

	rawDate, err := m.prompt("Release date (YYYY-MM-DD, blank if unknown): ")
	if err != nil {
		return err
	}
	if req.ReleaseDate, err = haven.ParseReleaseDate(rawDate); err != nil {
		return err
	}

	if req.Platform, err = m.prompt("Platform (blank if none): "); err != nil {
		return err
	}
	if req.SavePath, err = m.prompt("Save file location: "); err != nil {
		return err
	}
	if req.Notes, err = m.prompt("Notes (optional): "); err != nil {
		return err
	}

	record, err := m.backend.AddSave(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Save #%d added for %s.\n", record.Save.ID, record.Game.Title)
	return nil
}
