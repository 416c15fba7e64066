package api

import (
	"fmt"
	"net/http"

	"github.com/debemdeboas/ghostwriter/internal/config"
	"github.com/debemdeboas/ghostwriter/internal/sse"
	"github.com/debemdeboas/ghostwriter/internal/store"
	"github.com/debemdeboas/ghostwriter/internal/theme"
	"github.com/debemdeboas/ghostwriter/internal/util"
)

// NotifyChange tells SSE subscribers that a collection changed. It is meant
// to be installed with store.SetChangeNotifier.
func (h *Handler) NotifyChange(c store.Collection) {
	h.clients.Broadcast(string(c), string(c))
}

func knownTopic(topic string) bool {
	switch store.Collection(topic) {
	case "", store.CollectionVoiceProfile, store.CollectionDrafts, store.CollectionPersonas:
		return true
	}
	return false
}

// serveEvents streams change notifications. ?topic= restricts the stream
// to one collection.
func (h *Handler) serveEvents(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if !knownTopic(topic) {
		writeError(w, http.StatusBadRequest, "unknown topic")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeEventStream)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := sse.NewClient(topic)
	h.clients.Add(client)
	h.logger.Debug().Str("topic", topic).Int("clients", h.clients.Len()).Msg("SSE client connected")
	defer func() {
		h.clients.Delete(client)
		h.logger.Debug().Str("topic", topic).Msg("SSE client disconnected")
	}()

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	done := r.Context().Done()
	for {
		select {
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-done:
			return
		}
	}
}

// serveSyntaxCSS serves the stylesheet of the requested syntax theme. An
// explicit ?theme= is remembered in a cookie.
func (h *Handler) serveSyntaxCSS(w http.ResponseWriter, r *http.Request) {
	name := theme.SyntaxThemeFromRequest(r, h.syntaxTheme)
	if q := r.URL.Query().Get(config.QuerySyntaxTheme); q == name {
		http.SetCookie(w, &http.Cookie{
			Name:     config.CookieSyntaxTheme,
			Value:    name,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	css := []byte(theme.SyntaxCSS(name))
	etag := `"` + util.ContentHash(css) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, etag)
	w.Write(css)
}

func (h *Handler) serveSyntaxThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, theme.SyntaxThemes())
}
