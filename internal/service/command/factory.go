package command

import (
	"github.com/sandevgo/dusha/internal/observability"
	"github.com/sandevgo/dusha/internal/service/chat"
)

// NewRouter registers the chat commands plus /help over them.
func NewRouter(h *chat.Handler, metrics *observability.Metrics) *Router {
	r := New(nil, metrics)
	r.Register(NewStartCommand(h))
	r.Register(NewRememberCommand(h))
	r.Register(NewMemoryCommand(h))
	r.Register(NewClearMemoryCommand(h))
	r.Register(NewHelpCommand(r))
	return r
}
