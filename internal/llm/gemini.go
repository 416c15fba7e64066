// Package llm provides flows.Generator implementations.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/debemdeboas/ghostwriter/internal/flows"
)

const (
	DefaultTextModel  = "gemini-2.0-flash"
	DefaultImageModel = "gemini-2.0-flash-preview-image-generation"
)

var ErrNotConfigured = errors.New("llm: no API key configured")

var llmLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	llmLogger = l
}

// modelsAPI is the part of *genai.Models the generator calls.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Options struct {
	APIKey      string
	TextModel   string
	ImageModel  string
	Temperature float32
}

// Gemini generates content with the Gemini API.
type Gemini struct {
	models      modelsAPI
	textModel   string
	imageModel  string
	temperature *float32
}

func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGemini(client.Models, opts), nil
}

func newGemini(models modelsAPI, opts Options) *Gemini {
	g := &Gemini{
		models:     models,
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
	}
	if g.textModel == "" {
		g.textModel = DefaultTextModel
	}
	if g.imageModel == "" {
		g.imageModel = DefaultImageModel
	}
	if opts.Temperature > 0 {
		t := opts.Temperature
		g.temperature = &t
	}
	return g
}

func (g *Gemini) Generate(ctx context.Context, req flows.Request) (*flows.Response, error) {
	model := g.textModel
	config := &genai.GenerateContentConfig{Temperature: g.temperature}

	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Output) > 0 {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = outputSchema(req.Output)
	}
	if req.Image {
		model = g.imageModel
		config.ResponseModalities = []string{"TEXT", "IMAGE"}
	}

	contents := buildContents(req.History, req.Prompt)

	llmLogger.Debug().Str("model", model).Int("turns", len(contents)).Bool("structured", len(req.Output) > 0).Msg("Generating content")
	resp, err := g.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	return toResponse(resp), nil
}

func buildContents(history []flows.Message, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Role == flows.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}

// outputSchema turns the flow's output fields into a JSON object schema.
// Every field is required and keeps its declared order.
func outputSchema(fields []flows.Field) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		prop := &genai.Schema{Type: genai.TypeString, Description: f.Description}
		if f.List {
			prop = &genai.Schema{
				Type:        genai.TypeArray,
				Description: f.Description,
				Items:       &genai.Schema{Type: genai.TypeString},
			}
		}
		schema.Properties[f.Name] = prop
		schema.Required = append(schema.Required, f.Name)
		schema.PropertyOrdering = append(schema.PropertyOrdering, f.Name)
	}
	return schema
}

func toResponse(resp *genai.GenerateContentResponse) *flows.Response {
	out := &flows.Response{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text.WriteString(part.Text)
		if part.InlineData != nil && out.Media == nil && len(part.InlineData.Data) > 0 {
			out.Media = &flows.Media{
				MIMEType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
			}
		}
	}
	out.Text = text.String()
	return out
}

// Unavailable is used when no model is configured. Every call fails with
// ErrNotConfigured so the store features keep working without a key.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, flows.Request) (*flows.Response, error) {
	return nil, ErrNotConfigured
}
