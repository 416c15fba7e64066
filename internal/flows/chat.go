package flows

import (
	"context"
	"fmt"
	"strings"
)

type ChatInput struct {
	History      []Message `json:"history" validate:"dive"`
	Prompt       string    `json:"prompt" validate:"min=1"`
	VoiceProfile string    `json:"voiceProfile" validate:"required"`
}

type ChatOutput struct {
	Response string `json:"response"`
}

// Chat continues a conversation with the writing partner. The reply is
// free text, not structured output.
func (f *Flows) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	system, err := render(chatSystemPrompt, in)
	if err != nil {
		return nil, err
	}

	resp, err := f.gen.Generate(ctx, Request{
		System:  system,
		History: in.History,
		Prompt:  in.Prompt,
	})
	if err != nil {
		flowsLogger.Error().Err(err).Str("flow", "chat").Msg("Generation failed")
		return nil, fmt.Errorf("chat: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("chat: %w", ErrEmptyResponse)
	}
	return &ChatOutput{Response: resp.Text}, nil
}
