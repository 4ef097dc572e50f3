package llm

import (
	"context"

	"github.com/google/uuid"

	"chatrelay/internal/models"
	"chatrelay/internal/prompts"
)

// Responder adapts a Provider plus the prompt templates into the single-call
// contract the session coordinator expects.
type Responder struct {
	provider Provider
	prompts  *prompts.Manager
}

func NewResponder(provider Provider, pm *prompts.Manager) *Responder {
	return &Responder{provider: provider, prompts: pm}
}

// Respond renders the transcript into a prompt and asks the provider for a
// single text reply. The context carries the caller's deadline.
func (r *Responder) Respond(ctx context.Context, transcript []models.TranscriptEntry) (string, error) {
	prompt := r.prompts.BuildChatPrompt(transcript)
	return r.provider.GenerateReply(ctx, prompt, uuid.NewString())
}
