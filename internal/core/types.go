package core

const (
	Name          = "Dusha"
	UserAgent     = "Dusha-Bot/0.1"
	RepositoryURL = "https://github.com/sandevgo/dusha"
	Version       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a completion prompt or of the stored history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
