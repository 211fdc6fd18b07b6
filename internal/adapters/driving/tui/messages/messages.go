// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// AnswerReceived carries the answer (or failure) for a submitted question.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer conversation.
	ViewChat
	// ViewSettings lists and edits configuration.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// Setting is one configuration key and its display value.
type Setting struct {
	Key   string
	Value string
}

// SettingsLoaded carries the current configuration.
type SettingsLoaded struct {
	Settings []Setting
	Path     string
	Err      error
}

// SettingSaved signals a single setting was written.
type SettingSaved struct {
	Key string
	Err error
}

// IndexInfoLoaded carries the index description shown by the chat view.
type IndexInfoLoaded struct {
	Info domain.IndexInfo
}
