package core

import "context"

type CompletionRequest struct {
	Messages    []Message
	Temperature float64
}

// AIProvider issues one chat completion and returns the text of the first choice.
type AIProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
