package settings

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type mockSettingsService struct {
	values map[string]string
	keys   []string
	setErr error
	getErr error
	sets   map[string]string
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{
		keys: []string{"retrieval.top_k", "llm.api_key", "index.postgres_dsn"},
		values: map[string]string{
			"retrieval.top_k":    "5",
			"llm.api_key":        "sk-1234567890abcd",
			"index.postgres_dsn": "",
		},
		sets: map[string]string{},
	}
}

func (m *mockSettingsService) Load() (domain.Config, error) { return domain.DefaultConfig(), nil }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets[key] = value
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Get(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *mockSettingsService) Keys() []string { return m.keys }
func (m *mockSettingsService) Path() string { return "/tmp/config.toml" }

func loadedView(t *testing.T, svc *mockSettingsService) *View {
	t.Helper()
	v := NewView(nil, svc)
	v.SetDimensions(100, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_Init_LoadsSettings(t *testing.T) {
	v := loadedView(t, newMockSettings())

	require.Len(t, v.Settings(), 3)
	assert.Equal(t, messages.Setting{Key: "retrieval.top_k", Value: "5"}, v.Settings()[0])

	out := v.View()
	assert.Contains(t, out, "/tmp/config.toml")
	assert.Contains(t, out, "retrieval.top_k")
	assert.NotContains(t, out, "sk-1234567890abcd")
	assert.Contains(t, out, "****abcd")
	assert.Contains(t, out, "(not set)")
}

func TestView_Init_NoService(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(80, 24)

	v.Update(v.Init()())

	assert.Error(t, v.Err())
	assert.Contains(t, v.View(), "Error:")
}

func TestView_Init_GetError(t *testing.T) {
	svc := newMockSettings()
	svc.getErr = domain.ErrInvalidInput

	v := loadedView(t, svc)

	assert.ErrorIs(t, v.Err(), domain.ErrInvalidInput)
}

func TestView_EditAndSave(t *testing.T) {
	svc := newMockSettings()
	v := loadedView(t, svc)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Editing())
	assert.Equal(t, "5", v.input.Value())

	v.input.SetValue("8")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, v.Editing())

	saved := cmd()
	assert.Equal(t, messages.SettingSaved{Key: "retrieval.top_k"}, saved)
	assert.Equal(t, "8", svc.sets["retrieval.top_k"])

	_, reload := v.Update(saved)
	require.NotNil(t, reload)
	v.Update(reload())
	assert.Equal(t, "8", v.Settings()[0].Value)
	assert.Contains(t, v.View(), "Saved retrieval.top_k")
}

func TestView_EditSecretStartsEmpty(t *testing.T) {
	v := loadedView(t, newMockSettings())

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.True(t, v.Editing())
	assert.Empty(t, v.input.Value())
}

func TestView_EditCancel(t *testing.T) {
	svc := newMockSettings()
	v := loadedView(t, svc)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.Editing())
	assert.Empty(t, svc.sets)
}

func TestView_SaveError(t *testing.T) {
	svc := newMockSettings()
	svc.setErr = errors.New("invalid input: retrieval.top_k=0")
	v := loadedView(t, svc)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.input.SetValue("0")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, reload := v.Update(cmd())

	assert.Nil(t, reload)
	assert.Error(t, v.Err())
	assert.Contains(t, v.View(), "retrieval.top_k=0")
}

func TestView_Navigation(t *testing.T) {
	v := loadedView(t, newMockSettings())

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.selected)

	for range 5 {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	}
	assert.Equal(t, 2, v.selected)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, v.selected)
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := loadedView(t, newMockSettings())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_EnterWithoutSettings(t *testing.T) {
	v := NewView(nil, newMockSettings())
	v.SetDimensions(80, 24)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Editing())
	assert.Contains(t, v.View(), "Loading settings...")
}

func TestView_Reset(t *testing.T) {
	v := loadedView(t, newMockSettings())
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v.Reset()

	assert.False(t, v.Editing())
	assert.NoError(t, v.Err())
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"retrieval.top_k", "5", "5"},
		{"llm.model", "", "(not set)"},
		{"llm.api_key", "short", "****"},
		{"embedding.api_key", "sk-abcdefghijkl", "****ijkl"},
		{"index.postgres_dsn", "postgres://u:p@host/db", "****t/db"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayValue(tt.key, tt.value))
		})
	}
}
