package web

import (
	"log/slog"
	"net/http"

	"github.com/kuitang/editor-steps/internal/errs"
	"github.com/kuitang/editor-steps/internal/obs"
	"github.com/kuitang/editor-steps/internal/settings"
)

// WebHandler serves the fixture editor page and the admin report.
type WebHandler struct {
	renderer *Renderer
	store    *settings.Store
	log      *slog.Logger
}

// NewWebHandler creates a new web handler.
func NewWebHandler(renderer *Renderer, store *settings.Store) *WebHandler {
	return &WebHandler{
		renderer: renderer,
		store:    store,
		log:      obs.Pkg("web"),
	}
}

// RegisterRoutes registers all web routes on the given mux.
func (h *WebHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("GET /editor", h.HandleEditorPage)
	mux.HandleFunc("GET /admin/report", h.HandleSettingsReport)
	mux.HandleFunc("GET /health", h.HandleHealth)
}

// HandleIndex redirects to the editor fixture page.
func (h *WebHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/editor", http.StatusFound)
}

// HandleEditorPage serves the rich-text fixture page. The page carries
// two editor-backed fields; the summary field only appears when the
// editor_show_summary_toggle setting is on.
func (h *WebHandler) HandleEditorPage(w http.ResponseWriter, r *http.Request) {
	showSummary, err := h.store.GetBool(r.Context(), "editor_show_summary_toggle")
	if err != nil {
		// Missing or malformed setting falls back to showing the field.
		showSummary = true
	}
	profile := "full"
	if err := h.store.Get(r.Context(), "editor_default_profile", &profile); err != nil {
		profile = "full"
	}

	data := map[string]interface{}{
		"Title":       "Edit content",
		"ShowSummary": showSummary,
		"Profile":     profile,
	}
	if err := h.renderer.Render(w, "editor/page.html", data); err != nil {
		h.log.Error("render_editor_page_failed", "error", err)
		h.renderer.RenderError(w, http.StatusInternalServerError, "Failed to render page")
	}
}

// HandleSettingsReport renders the admin status report listing every
// widget setting with its current value and description.
func (h *WebHandler) HandleSettingsReport(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.All(r.Context())
	if err != nil {
		h.log.Error("load_settings_failed", "error", err)
		h.renderer.RenderError(w, errs.HTTPStatus(errs.CodeOf(err)), errs.MessageOf(err))
		return
	}

	data := map[string]interface{}{
		"Title":    "Status report",
		"Settings": all,
	}
	if err := h.renderer.Render(w, "report/status.html", data); err != nil {
		h.log.Error("render_report_failed", "error", err)
		h.renderer.RenderError(w, http.StatusInternalServerError, "Failed to render report")
	}
}

// HandleHealth responds to liveness probes.
func (h *WebHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
