// Package chat provides the conversational question and answer view for the TUI.
package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// chromeHeight is the rows taken by the title, input and status bar.
const chromeHeight = 6

type entryKind int

const (
	entryQuestion entryKind = iota
	entryAnswer
	entryError
)

// entry is one rendered line group of the transcript.
type entry struct {
	kind       entryKind
	text       string
	sources    []string
	confidence domain.Confidence
	direct     bool
}

// View is the chat view. It owns the conversation history and passes it
// to the answer service with every question.
type View struct {
	ctx      context.Context
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	answer   driving.AnswerService
	index    driving.IndexService
	input    *input.QuestionInput
	status   *status.Bar
	viewport viewport.Model

	history []domain.ConversationTurn
	entries []entry
	direct  bool
	pending bool
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a chat view. index may be nil.
func NewView(
	ctx context.Context,
	s *styles.Styles,
	answer driving.AnswerService,
	index driving.IndexService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	km := keymap.DefaultKeyMap()

	bar := status.NewBar(s, km)
	bar.SetBindings(km.ChatHelp())

	return &View{
		ctx:      ctx,
		styles:   s,
		keymap:   km,
		answer:   answer,
		index:    index,
		input:    input.NewQuestionInput(s),
		status:   bar,
		viewport: viewport.New(80, 24-chromeHeight),
		width:    80,
		height:   24,
	}
}

// Init focuses the input and loads the index size.
func (v *View) Init() tea.Cmd {
	cmds := []tea.Cmd{v.input.Focus()}
	if v.index != nil {
		cmds = append(cmds, v.loadIndexInfo())
	}
	return tea.Batch(cmds...)
}

func (v *View) loadIndexInfo() tea.Cmd {
	index := v.index
	ctx := v.ctx
	return func() tea.Msg {
		return messages.IndexInfoLoaded{Info: index.Info(ctx)}
	}
}

// ask returns a command that answers question with a snapshot of the history.
func (v *View) ask(question string) tea.Cmd {
	answer := v.answer
	ctx := v.ctx
	history := slices.Clone(v.history)
	opts := domain.AnswerOptions{Direct: v.direct}
	return func() tea.Msg {
		if answer == nil {
			return messages.AnswerReceived{Question: question, Err: domain.ErrLLMUnavailable}
		}
		ans, err := answer.Answer(ctx, question, history, opts)
		return messages.AnswerReceived{Question: question, Answer: ans, Err: err}
	}
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.IndexInfoLoaded:
		v.status.SetFragments(msg.Info.Count)
		return v, nil

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case key.Matches(msg, v.keymap.ToggleDirect):
		v.direct = !v.direct
		v.status.SetDirect(v.direct)
		if v.direct {
			v.input.SetLabel("Direct")
		} else {
			v.input.SetLabel("Ask")
		}
		return v, nil

	case key.Matches(msg, v.keymap.ClearHistory):
		v.ClearHistory()
		return v, nil

	case key.Matches(msg, v.keymap.ScrollUp), key.Matches(msg, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case key.Matches(msg, v.keymap.Send):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question unless one is already in flight.
func (v *View) submit() tea.Cmd {
	question := v.input.Question()
	if question == "" || v.pending {
		return nil
	}

	v.pending = true
	v.err = nil
	v.input.Reset()
	v.entries = append(v.entries, entry{kind: entryQuestion, text: question, direct: v.direct})
	v.status.SetState(status.StateThinking)
	v.refresh()

	return v.ask(question)
}

// handleAnswer records a completed answer. Failed questions never enter the history.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false

	if msg.Err != nil {
		v.err = msg.Err
		v.entries = append(v.entries, entry{kind: entryError, text: msg.Err.Error()})
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
		v.refresh()
		return
	}

	text := domain.NoRelevantInformation
	confidence := domain.ConfidenceLow
	var sources []string
	if msg.Answer != nil {
		text = msg.Answer.Text
		sources = msg.Answer.Sources
		confidence = msg.Answer.Confidence
	}

	v.history = append(v.history,
		domain.ConversationTurn{Role: domain.RoleUser, Content: msg.Question},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: text},
	)
	v.entries = append(v.entries, entry{
		kind: entryAnswer, text: text, sources: sources, confidence: confidence,
	})
	v.status.Clear()
	v.status.SetTurns(len(v.history))
	v.refresh()
}

// ClearHistory forgets the conversation and the transcript.
func (v *View) ClearHistory() {
	v.history = nil
	v.entries = nil
	v.err = nil
	v.status.Clear()
	v.status.SetTurns(0)
	v.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render("Ask a question to get started.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	var b strings.Builder
	for i, e := range v.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.kind {
		case entryQuestion:
			label := "You"
			if e.direct {
				label = "You (direct)"
			}
			b.WriteString(v.styles.User.Render(label + ": "))
			b.WriteString(wrap.Render(e.text))
		case entryAnswer:
			b.WriteString(v.styles.Assistant.Render("Assistant: "))
			if e.text == domain.NoRelevantInformation {
				b.WriteString(v.styles.Muted.Render(wrap.Render(e.text)))
			} else {
				b.WriteString(wrap.Render(e.text))
			}
			if len(e.sources) > 0 {
				b.WriteString("\n")
				b.WriteString(v.styles.Source.Render("Sources: " + strings.Join(e.sources, ", ")))
			}
			if e.text != domain.NoRelevantInformation {
				b.WriteString("\n")
				b.WriteString(v.styles.Confidence(e.confidence).Render("confidence: " + string(e.confidence)))
			}
		case entryError:
			b.WriteString(v.styles.Error.Render(wrap.Render("Error: " + e.text)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := v.styles.Title.Render("Chat")
	if v.pending {
		title += " " + v.styles.Muted.Render("(thinking...)")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s",
		title,
		v.viewport.View(),
		v.input.View(),
		v.status.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.status.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-chromeHeight, 3)
	v.refresh()
}

// Reset clears the typed question. The conversation is kept.
func (v *View) Reset() {
	v.input.Reset()
}

// History returns the conversation history.
func (v *View) History() []domain.ConversationTurn {
	return v.history
}

// Direct reports whether answers skip retrieval.
func (v *View) Direct() bool {
	return v.direct
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the last answer failure.
func (v *View) Err() error {
	return v.err
}
