package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/dusha/internal/config"
)

// APIKeyStep collects the key sent as the Bearer token to the provider
type APIKeyStep struct {
	input textinput.Model
	ready bool
	err   error
}

func NewAPIKeyStep() Step {
	return &APIKeyStep{}
}

func (s *APIKeyStep) Init() tea.Cmd {
	return nil
}

func (s *APIKeyStep) init(state *InstallState) {
	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 255
	s.input.Width = 40
	s.input.EchoMode = textinput.EchoPassword
	s.input.EchoCharacter = '•'

	switch state.LLM.Provider {
	case config.ProviderOpenRouter:
		s.input.Placeholder = "sk-or-v1-..."
	default:
		s.input.Placeholder = "sk-..."
	}
	s.ready = true
}

func (s *APIKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		s.init(state)
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			s.err = fmt.Errorf("the API key is required")
			return s, cmd
		}
		state.LLM.APIKey = val
		return nil, nil
	}
	return s, cmd
}

func (s *APIKeyStep) View(state *InstallState) string {
	if !s.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Enter your %s API key (OPENAI_API_KEY):\n\n", providerTitle(state.LLM.Provider)))
	b.WriteString(s.input.View() + "\n\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}

func providerTitle(provider string) string {
	switch provider {
	case config.ProviderOpenRouter:
		return "OpenRouter"
	case config.ProviderCustom:
		return "provider"
	default:
		return "OpenAI"
	}
}
