package installer

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/dusha/internal/config"
)

var presetModels = map[string][]item{
	config.ProviderOpenAI: {
		{id: "gpt-4.1-mini", title: "gpt-4.1-mini", desc: "Default: fast and cheap"},
		{id: "gpt-4.1", title: "gpt-4.1", desc: "Stronger, slower"},
		{id: "gpt-4o-mini", title: "gpt-4o-mini", desc: "Cheapest"},
	},
	config.ProviderOpenRouter: {
		{id: "openai/gpt-4.1-mini", title: "openai/gpt-4.1-mini", desc: "Default model via OpenRouter"},
		{id: "anthropic/claude-sonnet-4", title: "anthropic/claude-sonnet-4", desc: "Anthropic via OpenRouter"},
		{id: "google/gemini-2.5-flash", title: "google/gemini-2.5-flash", desc: "Google via OpenRouter"},
	},
}

// ModelStep picks the chat model from a short preset list
type ModelStep struct {
	list  list.Model
	ready bool
}

func NewModelStep() Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select the model"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{list: l}
}

func (s *ModelStep) Init() tea.Cmd {
	return nil
}

func modelItems(provider string) []list.Item {
	presets, ok := presetModels[provider]
	if !ok {
		presets = presetModels[config.ProviderOpenAI]
	}
	items := make([]list.Item, len(presets))
	for i, p := range presets {
		items[i] = p
	}
	return items
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		s.list.SetItems(modelItems(state.LLM.Provider))
		s.ready = true
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		wasFiltering := s.list.FilterState() == list.Filtering
		s.list, cmd = s.list.Update(msg)

		if wasFiltering || s.list.FilterState() == list.Filtering {
			return s, cmd
		}

		if i, ok := s.list.SelectedItem().(item); ok {
			state.LLM.Model = i.id
			return nil, nil
		}
		return s, cmd
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	return s.list.View()
}
