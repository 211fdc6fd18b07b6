// Package menu is the start screen of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

// Item is one entry of the menu.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool // Selecting the item quits the app.
}

// View lists the screens and reports how much is indexed.
type View struct {
	styles    *styles.Styles
	items     []Item
	selected  int
	fragments int
	width     int
	height    int
	ready     bool
}

// NewView creates the menu with Chat selected.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Chat", Description: "ask questions about indexed documents", View: messages.ViewChat},
			{Label: "Settings", Description: "view and change configuration", View: messages.ViewSettings},
			{Label: "Help", Description: "keyboard shortcuts", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		fragments: -1,
		width:     80,
		height:    24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and selects items. Digits select directly.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.IndexInfoLoaded:
		v.fragments = msg.Info.Count
		return v, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "enter":
			return v, v.choose(v.selected)
		case "q":
			return v, tea.Quit
		default:
			if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(v.items) {
				v.selected = int(key[0] - '1')
				return v, v.choose(v.selected)
			}
		}
	}

	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("sercha-rag"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Ask questions about your documents"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		cursor := "  "
		label := v.styles.Normal.Render(fmt.Sprintf("%d. %s", i+1, item.Label))
		if i == v.selected {
			cursor = "> "
			label = v.styles.Selected.Render(fmt.Sprintf("%d. %s", i+1, item.Label))
		}
		b.WriteString(cursor + label)
		if item.Description != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.fragments == 0:
		b.WriteString(v.styles.Warning.Render("The index is empty. Run 'sercha-rag ingest <path>' first."))
		b.WriteString("\n\n")
	case v.fragments > 0:
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d fragments indexed", v.fragments)))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-4/Enter] Select  [q] Quit"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Fragments returns the indexed fragment count, or -1 if unknown.
func (v *View) Fragments() int {
	return v.fragments
}
