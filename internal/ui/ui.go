// Package ui implements the interactive parts of rim: the recover picker and
// the yes/no prompt.
package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/babarot/rim/internal/core/types"
	"github.com/babarot/rim/internal/ui/confirm"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
)

const (
	bullet   = "•"
	ellipsis = "…"

	defaultWidth  = 66
	defaultHeight = 26
)

var (
	// ErrNoEntries is returned when there is nothing to pick from
	ErrNoEntries = errors.New("no recycled files found")

	// ErrInputCanceled is returned when the picker is quit without a choice
	ErrInputCanceled = errors.New("input is canceled")
)

// Pick opens the recover picker over entries and returns the chosen ones
func Pick(entries []types.TrashEntry) ([]types.TrashEntry, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	now := time.Now()
	items := lo.Map(entries, func(e types.TrashEntry, _ int) Item { return NewItem(e, now) })

	final, err := tea.NewProgram(newModel(items)).Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	m, ok := final.(Model)
	if !ok || m.quitting || len(m.choices) == 0 {
		return nil, ErrInputCanceled
	}
	return m.Choices(), nil
}

// Confirm asks a yes/no question on the terminal. Enter takes the default.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	m := confirm.New()
	m.Prompt = prompt
	m.DefaultValue = confirm.Denied
	if defaultYes {
		m.DefaultValue = confirm.Accepted
	}

	if _, err := tea.NewProgram(&m).Run(); err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return m.Selected().IsAccepted(), nil
}
