package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/debemdeboas/ghostwriter/internal/config"
	"github.com/debemdeboas/ghostwriter/internal/flows"
	"github.com/debemdeboas/ghostwriter/internal/model"
	"github.com/debemdeboas/ghostwriter/internal/render"
	"github.com/debemdeboas/ghostwriter/internal/theme"
	"github.com/debemdeboas/ghostwriter/internal/util"
)

const dayLayout = "2006-01-02"

func (h *Handler) serveState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

type voiceProfileBody struct {
	VoiceProfile *string `json:"voiceProfile"`
}

func (h *Handler) serveVoiceProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, voiceProfileBody{VoiceProfile: h.store.VoiceProfile()})
}

func (h *Handler) serveSetVoiceProfile(w http.ResponseWriter, r *http.Request) {
	var body voiceProfileBody
	if !decodeJSON(w, r, &body) {
		return
	}
	h.store.SetVoiceProfile(body.VoiceProfile)
	writeJSON(w, http.StatusOK, voiceProfileBody{VoiceProfile: h.store.VoiceProfile()})
}

func (h *Handler) serveClearVoiceProfile(w http.ResponseWriter, r *http.Request) {
	h.store.SetVoiceProfile(nil)
	w.WriteHeader(http.StatusNoContent)
}

// serveLearnVoice analyzes the posted samples and stores the resulting
// profile.
func (h *Handler) serveLearnVoice(w http.ResponseWriter, r *http.Request) {
	var in flows.LearnVoiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := h.flows.LearnVoice(r.Context(), in)
	if err != nil {
		h.writeFlowError(w, r, err)
		return
	}
	h.store.SetVoiceProfile(&out.VoiceProfile)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) serveDrafts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Drafts())
}

type createDraftRequest struct {
	Topic   string `json:"topic"`
	Format  string `json:"format"`
	Content string `json:"content" validate:"required"`
}

func (h *Handler) serveCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}
	d := h.store.AddDraft(model.NewDraft{Topic: req.Topic, Format: req.Format, Content: req.Content})
	h.logger.Info().Str("id", string(d.ID)).Str("title", d.GetTitle()).Msg("Draft saved")
	writeJSON(w, http.StatusCreated, d)
}

// draft looks up the {id} path value and writes a 404 when it is unknown.
func (h *Handler) draft(w http.ResponseWriter, r *http.Request) (model.Draft, bool) {
	d, ok := h.store.Draft(model.DraftID(r.PathValue("id")))
	if !ok {
		writeError(w, http.StatusNotFound, "draft not found")
	}
	return d, ok
}

func (h *Handler) serveDraft(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.draft(w, r); ok {
		writeJSON(w, http.StatusOK, d)
	}
}

type updateDraftRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) serveUpdateDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	var req updateDraftRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}
	h.store.UpdateDraftContent(d.ID, req.Content)
	d, _ = h.store.Draft(d.ID)
	writeJSON(w, http.StatusOK, d)
}

// serveDeleteDraft answers 204 whether or not the draft existed.
func (h *Handler) serveDeleteDraft(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteDraft(model.DraftID(r.PathValue("id")))
	w.WriteHeader(http.StatusNoContent)
}

type scheduleRequest struct {
	Date string `json:"date" validate:"required"`
}

// parseDate accepts a full RFC 3339 timestamp or a bare day, which is
// taken as midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dayLayout, s, loc)
}

func (h *Handler) serveScheduleDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}
	when, err := parseDate(req.Date, h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	h.store.ScheduleDraft(d.ID, when)
	d, _ = h.store.Draft(d.ID)
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) serveUnscheduleDraft(w http.ResponseWriter, r *http.Request) {
	h.store.UnscheduleDraft(model.DraftID(r.PathValue("id")))
	w.WriteHeader(http.StatusNoContent)
}

// servePreview renders the draft as HTML, or its highlighted markdown
// source with ?view=source.
func (h *Handler) servePreview(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	syntaxTheme := theme.SyntaxThemeFromRequest(r, h.syntaxTheme)

	var body []byte
	if r.URL.Query().Get("view") == "source" {
		src, err := render.HighlightMarkdown(d.Content, syntaxTheme)
		if err != nil {
			h.logger.Error().Err(err).Str("id", string(d.ID)).Msg("Error highlighting draft source")
			writeError(w, http.StatusInternalServerError, "could not highlight draft")
			return
		}
		body = []byte(src)
	} else {
		body = render.MarkdownCached([]byte(d.Content), h.renderer, syntaxTheme).HTML
	}

	etag := `"` + util.ContentHash(body) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set(config.HETag, etag)
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Write(body)
}

type repurposeDraftRequest struct {
	TargetFormat string `json:"targetFormat" validate:"required"`
	Save         bool   `json:"save"`
}

type repurposeDraftResponse struct {
	RepurposedContent string       `json:"repurposedContent"`
	Draft             *model.Draft `json:"draft,omitempty"`
}

// serveRepurposeDraft rewrites a stored draft for another format in the
// stored voice. With save set the result becomes a new draft.
func (h *Handler) serveRepurposeDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draft(w, r)
	if !ok {
		return
	}
	var req repurposeDraftRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}
	profile := h.store.VoiceProfile()
	if profile == nil {
		writeError(w, http.StatusConflict, "no voice profile has been learned yet")
		return
	}

	out, err := h.flows.Repurpose(r.Context(), flows.RepurposeInput{
		SourceContent: d.Content,
		VoiceProfile:  *profile,
		TargetFormat:  req.TargetFormat,
	})
	if err != nil {
		h.writeFlowError(w, r, err)
		return
	}

	resp := repurposeDraftResponse{RepurposedContent: out.RepurposedContent}
	if req.Save {
		saved := h.store.AddDraft(model.NewDraft{
			Topic:   "Repurposed: " + d.Topic,
			Format:  req.TargetFormat,
			Content: out.RepurposedContent,
		})
		resp.Draft = &saved
	}
	writeJSON(w, http.StatusOK, resp)
}

type calendarResponse struct {
	Day         string        `json:"day"`
	Scheduled   []model.Draft `json:"scheduled"`
	Unscheduled []model.Draft `json:"unscheduled"`
}

// serveCalendar lists the drafts scheduled on ?day= (today by default) and
// the drafts not scheduled at all.
func (h *Handler) serveCalendar(w http.ResponseWriter, r *http.Request) {
	day := h.now().In(h.location)
	if q := r.URL.Query().Get("day"); q != "" {
		parsed, err := time.ParseInLocation(dayLayout, q, h.location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	writeJSON(w, http.StatusOK, calendarResponse{
		Day:         day.Format(dayLayout),
		Scheduled:   h.store.ScheduledOn(day, h.location),
		Unscheduled: h.store.Unscheduled(),
	})
}

func (h *Handler) servePersonas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Personas())
}

type createPersonaRequest struct {
	Name        string `json:"name" validate:"min=3"`
	Description string `json:"description" validate:"min=20"`
}

func (h *Handler) serveCreatePersona(w http.ResponseWriter, r *http.Request) {
	var req createPersonaRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}
	p := h.store.AddPersona(model.NewPersona{Name: req.Name, Description: req.Description})
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) serveDeletePersona(w http.ResponseWriter, r *http.Request) {
	h.store.DeletePersona(model.PersonaID(r.PathValue("id")))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveExperts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, flows.Experts())
}
