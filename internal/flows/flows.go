// Package flows holds the prompt flows around the content store. Each flow
// validates its input, renders a prompt and asks a Generator for structured
// output.
package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyResponse     = errors.New("the model returned an empty response")
	ErrMalformedResponse = errors.New("the model returned malformed output")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role    Role   `json:"role" validate:"required,oneof=user model"`
	Content string `json:"content"`
}

// Field describes one property of the structured output a flow expects.
type Field struct {
	Name        string
	Description string
	List        bool
}

type Request struct {
	System  string
	History []Message
	Prompt  string
	// Output, when set, asks for a JSON object with exactly these fields.
	Output []Field
	// Image asks for an image in Response.Media.
	Image bool
}

type Media struct {
	MIMEType string
	Data     []byte
}

type Response struct {
	Text  string
	Media *Media
}

// Generator is the text generation capability the flows run on.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

var flowsLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	flowsLogger = l
}

// Flows runs prompt flows against one Generator.
type Flows struct {
	gen Generator
}

func New(gen Generator) *Flows {
	return &Flows{gen: gen}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists the input fields that failed validation, keyed by
// their JSON name.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Validate checks v against its validate tags and returns a
// *ValidationError describing every failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fieldPath(fe)] = formatFieldError(fe)
	}
	return verr
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	field := fieldPath(fe)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("error rendering %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// structured sends a prompt asking for output and decodes the JSON answer
// into T.
func structured[T any](ctx context.Context, gen Generator, name, prompt string, output []Field) (*T, error) {
	log := flowsLogger.With().Str("flow", name).Logger()
	log.Debug().Int("prompt_len", len(prompt)).Msg("Running flow")

	resp, err := gen.Generate(ctx, Request{Prompt: prompt, Output: output})
	if err != nil {
		log.Error().Err(err).Msg("Generation failed")
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		log.Warn().Msg("Empty response")
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyResponse)
	}

	var out T
	if err := json.Unmarshal([]byte(resp.Text), &out); err != nil {
		log.Warn().Err(err).Msg("Malformed response")
		return nil, fmt.Errorf("%s: %w: %w", name, ErrMalformedResponse, err)
	}
	return &out, nil
}
