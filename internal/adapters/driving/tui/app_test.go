package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Answer:   &MockAnswerService{},
		Index:    &MockIndexService{Entries: 7},
		Settings: &MockSettingsService{},
	}
}

func newReadyApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Index: &MockIndexService{}})

	assert.ErrorIs(t, err, ErrMissingAnswerService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
	assert.Equal(t, ctx, app.ctx)
	assert.NotEqual(t, "Initialising...", app.Chat().View())
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Equal(t, 80, app.width)
	assert.Equal(t, 24, app.height)
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_MenuToChat(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, cmd = app.Update(cmd())

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.NotNil(t, cmd)
	assert.Contains(t, app.View(), "Chat")
}

func TestApp_ChatRoundTrip(t *testing.T) {
	var gotHistory []domain.ConversationTurn
	ports := newTestPorts()
	ports.Answer = &MockAnswerService{
		AnswerFunc: func(
			_ context.Context, question string, history []domain.ConversationTurn, _ domain.AnswerOptions,
		) (*domain.Answer, error) {
			gotHistory = history
			return &domain.Answer{Question: question, Text: "Thirty days.", Sources: []string{"policy.pdf"}}, nil
		},
	}
	app := newReadyApp(t, ports)
	app.Update(messages.ViewChanged{View: messages.ViewChat})

	for _, r := range "refunds?" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Empty(t, gotHistory)
	assert.Len(t, app.Chat().History(), 2)
	assert.Contains(t, app.View(), "Thirty days.")
}

func TestApp_AnswerError(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	app.Update(messages.AnswerReceived{Question: "q", Err: domain.ErrGenerationFailed})

	assert.ErrorIs(t, app.Err(), domain.ErrGenerationFailed)
	assert.Empty(t, app.Chat().History())
}

func TestApp_IndexInfoLoaded(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.SetDimensions(200, 30)
	app.Update(messages.ViewChanged{View: messages.ViewChat})

	app.Update(messages.IndexInfoLoaded{Info: domain.IndexInfo{Count: 7}})

	assert.Contains(t, app.View(), "7 fragments indexed")
}

func TestApp_ChatEscReturnsToMenu(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewChat})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Settings(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewSettings})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewSettings, app.CurrentView())
	out := app.View()
	assert.Contains(t, out, "Settings")
	assert.Contains(t, out, "retrieval.top_k")
}

func TestApp_Help(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	assert.Contains(t, app.View(), "ctrl+d")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	boom := errors.New("boom")

	_, cmd := app.Update(messages.ErrorOccurred{Err: boom})

	assert.Nil(t, cmd)
	assert.Equal(t, boom, app.Err())
}

func TestApp_UnknownViewRendersMenu(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.currentView = messages.ViewType(99)

	assert.Contains(t, app.View(), "sercha-rag")
}
