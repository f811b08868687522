package test

import (
	"context"
	"sync"

	"github.com/sandevgo/dusha/internal/core"
)

// Store is an in-memory FactRepository and MessagesRepository.
type Store struct {
	mu    sync.Mutex
	facts map[int64]string
	msgs  map[int64][]core.Message

	// Injected failures.
	GetFactsErr   error
	SetFactsErr   error
	AddMessageErr error

	SetFactsCalls int
}

func NewStore() *Store {
	return &Store{
		facts: make(map[int64]string),
		msgs:  make(map[int64][]core.Message),
	}
}

func (s *Store) GetFacts(ctx context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetFactsErr != nil {
		return "", s.GetFactsErr
	}
	return s.facts[userID], nil
}

func (s *Store) SetFacts(ctx context.Context, userID int64, facts string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetFactsCalls++
	if s.SetFactsErr != nil {
		return s.SetFactsErr
	}
	s.facts[userID] = facts
	return nil
}

func (s *Store) AddMessage(ctx context.Context, userID int64, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AddMessageErr != nil {
		return s.AddMessageErr
	}
	s.msgs[userID] = append(s.msgs[userID], core.Message{Role: role, Content: content})
	return nil
}

func (s *Store) GetRecentMessages(ctx context.Context, userID int64, limit int) ([]core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		return nil, nil
	}
	all := s.msgs[userID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]core.Message, len(all))
	copy(out, all)
	return out, nil
}

func (s *Store) TrimHistory(ctx context.Context, userID int64, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep < 0 {
		keep = 0
	}
	if all := s.msgs[userID]; len(all) > keep {
		s.msgs[userID] = append([]core.Message(nil), all[len(all)-keep:]...)
	}
	return nil
}

func (s *Store) CountMessages(ctx context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs[userID]), nil
}

// Messages returns a copy of the whole retained history of a user.
func (s *Store) Messages(userID int64) []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Message(nil), s.msgs[userID]...)
}

// Provider records completion requests and answers with Respond,
// or "ok" when Respond is nil.
type Provider struct {
	mu       sync.Mutex
	requests []core.CompletionRequest
	Respond  func(req core.CompletionRequest) (string, error)
}

func (p *Provider) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	respond := p.Respond
	p.mu.Unlock()

	if respond == nil {
		return "ok", nil
	}
	return respond(req)
}

func (p *Provider) Requests() []core.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.CompletionRequest(nil), p.requests...)
}

// CountTemperature counts requests made at the given temperature.
func (p *Provider) CountTemperature(t float64) int {
	n := 0
	for _, r := range p.Requests() {
		if r.Temperature == t {
			n++
		}
	}
	return n
}

// MemoryConfig is a fixed core.MemoryConfig.
type MemoryConfig struct {
	ShortHistoryLimit int
	HistoryKeep       int
	ExtractEvery      int
}

func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{ShortHistoryLimit: 20, HistoryKeep: 40, ExtractEvery: 6}
}

func (c MemoryConfig) GetShortHistoryLimit() int { return c.ShortHistoryLimit }
func (c MemoryConfig) GetHistoryKeep() int       { return c.HistoryKeep }
func (c MemoryConfig) GetExtractEvery() int      { return c.ExtractEvery }

// PromptConfig points SYSTEM.md at Path.
type PromptConfig struct {
	Path string
}

func (c PromptConfig) GetSystemPath() string { return c.Path }
