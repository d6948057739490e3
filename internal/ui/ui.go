package ui

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcules/motor-speed/internal/activity"
	"github.com/mcules/motor-speed/internal/artifact"
	"github.com/mcules/motor-speed/internal/ledger"
	"github.com/mcules/motor-speed/internal/metrics"
	"github.com/mcules/motor-speed/internal/predict"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	Pipeline *predict.Pipeline
	Loader   *artifact.Loader
	Activity *activity.Log
	Ledger   *ledger.Store

	// OnReload is called with the new bundle after an artifact reload.
	OnReload func(*artifact.Bundle)

	templates *template.Template
}

func NewHandler(pipeline *predict.Pipeline, loader *artifact.Loader, activityLog *activity.Log, store *ledger.Store) (*Handler, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		Pipeline:  pipeline,
		Loader:    loader,
		Activity:  activityLog,
		Ledger:    store,
		templates: tpl,
	}, nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ui/", h.index)
	mux.HandleFunc("/ui/predict", h.predict)
	mux.HandleFunc("/ui/activity", h.activity)
	mux.HandleFunc("/ui/artifacts", h.artifacts)
	mux.HandleFunc("/ui/artifacts/reload", h.reload)
	mux.HandleFunc("/health", h.health)
}

type viewModel struct {
	Title    string
	Now      time.Time
	Problems []artifact.Result

	// predict page
	Form       formView
	Result     *resultView
	Blocked    bool
	InputError string

	// activity page
	Activity []activityRow

	// artifacts page
	Current []artifact.Result
	Loads   []ledger.LoadRecord
}

func (h *Handler) newViewModel(title string) viewModel {
	return viewModel{
		Title:    title,
		Now:      time.Now(),
		Problems: h.Pipeline.Bundle().Problems(),
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, vm viewModel) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := h.templates.ExecuteTemplate(w, "layout.html", map[string]any{
		"Page": name,
		"VM":   vm,
	})
	if err != nil {
		log.Error().Err(err).Str("page", name).Msg("render failed")
	}
}

type healthResponse struct {
	Status      string                          `json:"status"`
	Ready       bool                            `json:"ready"`
	Problems    []string                        `json:"problems,omitempty"`
	Latency     map[string]metrics.StageLatency `json:"latency,omitempty"`
	MemoHitRate float64                         `json:"memo_hit_rate"`
	MemoEntries int64                           `json:"memo_entries"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	b := h.Pipeline.Bundle()
	resp := healthResponse{Status: "ok", Ready: b.Ready(), Latency: h.Pipeline.Latency.Snapshot()}
	for _, p := range b.Problems() {
		resp.Problems = append(resp.Problems, p.Message)
	}
	if !resp.Ready {
		resp.Status = "degraded"
	}
	resp.MemoHitRate, resp.MemoEntries = h.Pipeline.MemoStats()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
