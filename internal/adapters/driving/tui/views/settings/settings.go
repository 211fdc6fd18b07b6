// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Key constants for key handling.
const (
	keyUp    = "up"
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// View lists every setting and edits one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings []messages.Setting
	path     string
	err      error
	notice   string

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           ti,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that reads every key's effective value.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		keys := svc.Keys()
		out := make([]messages.Setting, 0, len(keys))
		for _, k := range keys {
			value, err := svc.Get(k)
			if err != nil {
				return messages.SettingsLoaded{Path: svc.Path(), Err: err}
			}
			out = append(out, messages.Setting{Key: k, Value: value})
		}
		return messages.SettingsLoaded{Settings: out, Path: svc.Path()}
	}
}

// saveSetting returns a command that persists one value.
func (v *View) saveSetting(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingSaved{Key: key, Err: fmt.Errorf("settings service not available")}
		}
		return messages.SettingSaved{Key: key, Err: svc.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.path = msg.Path
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.settings = msg.Settings
		v.selected = min(v.selected, max(len(v.settings)-1, 0))
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			v.notice = ""
			return v, nil
		}
		v.err = nil
		v.notice = fmt.Sprintf("Saved %s", msg.Key)
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleListKeys(msg)
	}

	return v, nil
}

func (v *View) handleListKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keyUp, "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(v.settings)-1 {
			v.selected++
		}
	case keyEnter:
		if len(v.settings) == 0 {
			return v, nil
		}
		return v, v.startEdit()
	}
	return v, nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.stopEdit()
		return v, nil
	case keyEnter:
		key := v.settings[v.selected].Key
		value := v.input.Value()
		v.stopEdit()
		return v, v.saveSetting(key, value)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// startEdit opens the input on the selected setting. Secrets start empty.
func (v *View) startEdit() tea.Cmd {
	st := v.settings[v.selected]
	v.editing = true
	v.notice = ""
	v.err = nil
	v.input.Placeholder = st.Key
	if isSecret(st.Key) {
		v.input.EchoMode = textinput.EchoPassword
		v.input.SetValue("")
	} else {
		v.input.EchoMode = textinput.EchoNormal
		v.input.SetValue(st.Value)
	}
	return v.input.Focus()
}

func (v *View) stopEdit() {
	v.editing = false
	v.input.Blur()
	v.input.Reset()
}

// View renders the settings view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n")
	if v.path != "" {
		b.WriteString(v.styles.Muted.Render(v.path))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(v.settings) == 0 && v.err == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		b.WriteString("\n")
	}

	keyWidth := 0
	for _, st := range v.settings {
		keyWidth = max(keyWidth, len(st.Key))
	}

	for i, st := range v.settings {
		cursor := "  "
		style := v.styles.Normal
		if i == v.selected {
			cursor = "> "
			style = v.styles.Selected
		}
		value := DisplayValue(st.Key, st.Value)
		if v.editing && i == v.selected {
			value = v.input.View()
		}
		b.WriteString(cursor)
		b.WriteString(style.Render(fmt.Sprintf("%-*s", keyWidth, st.Key)))
		b.WriteString("  ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	if v.editing {
		b.WriteString(v.styles.Help.Render("[Enter] Save  [Esc] Cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Edit  [Esc] Back"))
	}

	return b.String()
}

// DisplayValue masks secrets and marks empty values.
func DisplayValue(key, value string) string {
	if value == "" {
		return "(not set)"
	}
	if isSecret(key) {
		return maskValue(value)
	}
	return value
}

func isSecret(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "_dsn")
}

// maskValue keeps the last four characters of long secrets.
func maskValue(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.Width = max(width/2, 20)
}

// Reset returns the view to the list with no pending edit.
func (v *View) Reset() {
	v.stopEdit()
	v.err = nil
	v.notice = ""
}

// Settings returns the loaded settings.
func (v *View) Settings() []messages.Setting {
	return v.settings
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
