package flows

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrNoImage = errors.New("image generation returned no image")

type VisualInput struct {
	Content string `json:"content" validate:"required"`
}

type VisualOutput struct {
	ImageURL string `json:"imageUrl"`
}

type imageSummary struct {
	Summary string `json:"summary"`
}

// DataURI encodes the media as a data: URL.
func (m *Media) DataURI() string {
	mime := m.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

// VisualAsset summarizes content into an image prompt, then generates an
// image for it.
func (f *Flows) VisualAsset(ctx context.Context, in VisualInput) (*VisualOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	prompt, err := render(summarizeForImagePrompt, in)
	if err != nil {
		return nil, err
	}
	summary, err := structured[imageSummary](ctx, f.gen, "summarize-for-image", prompt, []Field{
		{Name: "summary", Description: "A concise, visually descriptive instruction for an image model."},
	})
	if err != nil {
		return nil, err
	}
	if summary.Summary == "" {
		return nil, fmt.Errorf("summarize-for-image: %w", ErrEmptyResponse)
	}

	prompt, err = render(imagePrompt, summary.Summary)
	if err != nil {
		return nil, err
	}
	resp, err := f.gen.Generate(ctx, Request{Prompt: prompt, Image: true})
	if err != nil {
		flowsLogger.Error().Err(err).Str("flow", "visual").Msg("Image generation failed")
		return nil, fmt.Errorf("visual: %w", err)
	}
	if resp == nil || resp.Media == nil || len(resp.Media.Data) == 0 {
		return nil, fmt.Errorf("visual: %w", ErrNoImage)
	}

	return &VisualOutput{ImageURL: resp.Media.DataURI()}, nil
}
