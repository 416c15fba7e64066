// Package api exposes the content store and the prompt flows as a JSON
// HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/ghostwriter/internal/config"
	"github.com/debemdeboas/ghostwriter/internal/flows"
	"github.com/debemdeboas/ghostwriter/internal/llm"
	"github.com/debemdeboas/ghostwriter/internal/model"
	"github.com/debemdeboas/ghostwriter/internal/render"
	"github.com/debemdeboas/ghostwriter/internal/routes"
	"github.com/debemdeboas/ghostwriter/internal/sse"
	"github.com/debemdeboas/ghostwriter/internal/store"
)

const maxBodyBytes = 1 << 20

// ContentStore is the part of *store.Store the handlers use.
type ContentStore interface {
	Snapshot() store.Snapshot
	VoiceProfile() *string
	SetVoiceProfile(profile *string)

	Drafts() []model.Draft
	Draft(id model.DraftID) (model.Draft, bool)
	AddDraft(nd model.NewDraft) model.Draft
	DeleteDraft(id model.DraftID)
	UpdateDraftContent(id model.DraftID, content string)
	ScheduleDraft(id model.DraftID, when time.Time)
	UnscheduleDraft(id model.DraftID)
	ScheduledOn(day time.Time, loc *time.Location) []model.Draft
	Unscheduled() []model.Draft

	Personas() []model.Persona
	Persona(id model.PersonaID) (model.Persona, bool)
	AddPersona(np model.NewPersona) model.Persona
	DeletePersona(id model.PersonaID)
}

type Options struct {
	Renderer    string
	SyntaxTheme string
	// Calendar days are computed in Location. Defaults to UTC.
	Location *time.Location
	Logger   zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Handler struct {
	store   ContentStore
	flows   *flows.Flows
	clients *sse.SSEClients

	renderer    string
	syntaxTheme string
	location    *time.Location
	logger      zerolog.Logger
	now         func() time.Time
}

func New(st ContentStore, fl *flows.Flows, clients *sse.SSEClients, opts Options) *Handler {
	h := &Handler{
		store:       st,
		flows:       fl,
		clients:     clients,
		renderer:    opts.Renderer,
		syntaxTheme: opts.SyntaxTheme,
		location:    opts.Location,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if h.renderer == "" {
		h.renderer = render.RendererMmark
	}
	if h.syntaxTheme == "" {
		h.syntaxTheme = config.DefaultSyntaxTheme
	}
	if h.location == nil {
		h.location = time.UTC
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(routes.APIState, h.serveState)
	mux.HandleFunc(routes.APIVoiceProfileGet, h.serveVoiceProfile)
	mux.HandleFunc(routes.APIVoiceProfilePut, h.serveSetVoiceProfile)
	mux.HandleFunc(routes.APIVoiceProfileClear, h.serveClearVoiceProfile)
	mux.HandleFunc(routes.APIVoiceProfileLearn, h.serveLearnVoice)

	mux.HandleFunc(routes.APIDrafts, h.serveDrafts)
	mux.HandleFunc(routes.APIDraftCreate, h.serveCreateDraft)
	mux.HandleFunc(routes.APIDraft, h.serveDraft)
	mux.HandleFunc(routes.APIDraftUpdate, h.serveUpdateDraft)
	mux.HandleFunc(routes.APIDraftDelete, h.serveDeleteDraft)
	mux.HandleFunc(routes.APIDraftSchedule, h.serveScheduleDraft)
	mux.HandleFunc(routes.APIDraftUnschedule, h.serveUnscheduleDraft)
	mux.HandleFunc(routes.APIDraftPreview, h.servePreview)
	mux.HandleFunc(routes.APIDraftRepurpose, h.serveRepurposeDraft)
	mux.HandleFunc(routes.APICalendar, h.serveCalendar)

	mux.HandleFunc(routes.APIPersonas, h.servePersonas)
	mux.HandleFunc(routes.APIPersonaCreate, h.serveCreatePersona)
	mux.HandleFunc(routes.APIPersonaDelete, h.serveDeletePersona)
	mux.HandleFunc(routes.APIExperts, h.serveExperts)

	mux.HandleFunc(routes.APIFlowDraft, h.serveFlowDraft)
	mux.HandleFunc(routes.APIFlowRepurpose, h.serveFlowRepurpose)
	mux.HandleFunc(routes.APIFlowAnalyze, h.serveFlowAnalyze)
	mux.HandleFunc(routes.APIFlowFeedback, h.serveFlowFeedback)
	mux.HandleFunc(routes.APIFlowIdeas, h.serveFlowIdeas)
	mux.HandleFunc(routes.APIFlowSchedule, h.serveFlowSchedule)
	mux.HandleFunc(routes.APIFlowChat, h.serveFlowChat)
	mux.HandleFunc(routes.APIFlowVisual, h.serveFlowVisual)

	mux.HandleFunc(routes.APILogin, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc(routes.SSEPath, h.serveEvents)
	mux.HandleFunc(routes.SyntaxCSS, h.serveSyntaxCSS)
	mux.HandleFunc(routes.SyntaxThemes, h.serveSyntaxThemes)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFlowError maps a flow failure to a status code.
func (h *Handler) writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *flows.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, llm.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "text generation is not configured")
	case r.Context().Err() != nil:
		// Client went away.
		h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Request cancelled")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Flow failed")
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		}
		return false
	}
	return true
}

// validate runs the validator tags on a request body and writes a 400 on
// failure.
func validate(w http.ResponseWriter, v any) bool {
	err := flows.Validate(v)
	if err == nil {
		return true
	}
	var verr *flows.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	} else {
		writeError(w, http.StatusBadRequest, err.Error())
	}
	return false
}
