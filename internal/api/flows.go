package api

import (
	"net/http"

	"github.com/debemdeboas/ghostwriter/internal/flows"
	"github.com/debemdeboas/ghostwriter/internal/model"
)

// withVoiceProfile returns given, or the stored profile when given is empty.
func (h *Handler) withVoiceProfile(given string) string {
	if given != "" {
		return given
	}
	if p := h.store.VoiceProfile(); p != nil {
		return *p
	}
	return ""
}

// runFlow decodes the body into In, calls fn and writes its output.
func runFlow[In, Out any](h *Handler, w http.ResponseWriter, r *http.Request, prepare func(*In), fn func(*http.Request, In) (*Out, error)) {
	var in In
	if !decodeJSON(w, r, &in) {
		return
	}
	if prepare != nil {
		prepare(&in)
	}
	out, err := fn(r, in)
	if err != nil {
		h.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) serveFlowDraft(w http.ResponseWriter, r *http.Request) {
	runFlow(h, w, r,
		func(in *flows.DraftInput) { in.VoiceProfile = h.withVoiceProfile(in.VoiceProfile) },
		func(r *http.Request, in flows.DraftInput) (*flows.DraftOutput, error) {
			return h.flows.Draft(r.Context(), in)
		})
}

func (h *Handler) serveFlowRepurpose(w http.ResponseWriter, r *http.Request) {
	runFlow(h, w, r,
		func(in *flows.RepurposeInput) { in.VoiceProfile = h.withVoiceProfile(in.VoiceProfile) },
		func(r *http.Request, in flows.RepurposeInput) (*flows.RepurposeOutput, error) {
			return h.flows.Repurpose(r.Context(), in)
		})
}

func (h *Handler) serveFlowAnalyze(w http.ResponseWriter, r *http.Request) {
	runFlow(h, w, r, nil, func(r *http.Request, in flows.AnalyzeInput) (*flows.AnalyzeOutput, error) {
		return h.flows.Analyze(r.Context(), in)
	})
}

func (h *Handler) serveFlowIdeas(w http.ResponseWriter, r *http.Request) {
	runFlow(h, w, r,
		func(in *flows.IdeasInput) { in.UserVoiceProfile = h.withVoiceProfile(in.UserVoiceProfile) },
		func(r *http.Request, in flows.IdeasInput) (*flows.IdeasOutput, error) {
			return h.flows.GenerateIdeas(r.Context(), in)
		})
}

func (h *Handler) serveFlowSchedule(w http.ResponseWriter, r *http.Request) {
	runFlow(h, w, r, nil, func(r *http.Request, in flows.ScheduleInput) (*flows.ScheduleOutput, error) {
		return h.flows.SuggestSchedule(r.Context(), in)
	})
}

func (h *Handler) serveFlowChat(w http.ResponseWriter, r *http.Request) {
	runFlow(h, w, r,
		func(in *flows.ChatInput) { in.VoiceProfile = h.withVoiceProfile(in.VoiceProfile) },
		func(r *http.Request, in flows.ChatInput) (*flows.ChatOutput, error) {
			return h.flows.Chat(r.Context(), in)
		})
}

func (h *Handler) serveFlowVisual(w http.ResponseWriter, r *http.Request) {
	runFlow(h, w, r, nil, func(r *http.Request, in flows.VisualInput) (*flows.VisualOutput, error) {
		return h.flows.VisualAsset(r.Context(), in)
	})
}

// feedbackRequest names the draft either by id or by content, and the
// reviewer by persona id, expert id or a free description.
type feedbackRequest struct {
	DraftID            string `json:"draftId"`
	DraftContent       string `json:"draftContent"`
	PersonaID          string `json:"personaId"`
	ExpertID           string `json:"expertId"`
	PersonaDescription string `json:"personaDescription"`
}

func (h *Handler) serveFlowFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := flows.FeedbackInput{
		DraftContent:       req.DraftContent,
		PersonaDescription: req.PersonaDescription,
	}
	if req.DraftID != "" {
		d, ok := h.store.Draft(model.DraftID(req.DraftID))
		if !ok {
			writeError(w, http.StatusNotFound, "draft not found")
			return
		}
		in.DraftContent = d.Content
	}
	switch {
	case req.PersonaID != "":
		p, ok := h.store.Persona(model.PersonaID(req.PersonaID))
		if !ok {
			writeError(w, http.StatusNotFound, "persona not found")
			return
		}
		in.PersonaDescription = p.Description
	case req.ExpertID != "":
		e, ok := flows.ExpertByID(req.ExpertID)
		if !ok {
			writeError(w, http.StatusNotFound, "expert not found")
			return
		}
		in.PersonaDescription = e.Description
	}

	out, err := h.flows.PersonaFeedback(r.Context(), in)
	if err != nil {
		h.writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
