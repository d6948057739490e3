package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcules/motor-speed/internal/params"
	"github.com/mcules/motor-speed/internal/predict"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	Pipeline *predict.Pipeline
}

func NewHandler(p *predict.Pipeline) *Handler {
	return &Handler{Pipeline: p}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/predict", h.HandlePredict)
	mux.HandleFunc("/v1/parameters", h.HandleParameters)
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	RPM       float64 `json:"rpm"`
	Formatted string  `json:"formatted"`
	Units     string  `json:"units"`
}

type diagnostic struct {
	Artifact string `json:"artifact"`
	Path     string `json:"path"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type errorResponse struct {
	Error       string       `json:"error"`
	Diagnostics []diagnostic `json:"diagnostics,omitempty"`
}

type parameter struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Unit    string  `json:"unit,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Column  int     `json:"column"`
}

// HandlePredict predicts from a JSON feature map. Absent features take their
// defaults.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req predictRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v, err := params.FromMap(req.Features)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pr, err := h.Pipeline.Predict(v)
	if err != nil {
		var inc *predict.IncompleteError
		if errors.As(err, &inc) {
			out := errorResponse{Error: predict.ErrIncompleteArtifacts.Error()}
			for _, p := range inc.Problems {
				out.Diagnostics = append(out.Diagnostics, diagnostic{
					Artifact: p.Kind.String(),
					Path:     p.Path,
					Status:   string(p.Status),
					Message:  p.Message,
				})
			}
			writeJSON(w, http.StatusServiceUnavailable, out)
			return
		}
		log.Error().Err(err).Msg("api prediction failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		RPM:       pr.Value,
		Formatted: pr.Format(),
		Units:     pr.Units.String(),
	})
}

func (h *Handler) HandleParameters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	all := params.All()
	out := make([]parameter, 0, len(all))
	for _, p := range all {
		out = append(out, parameter{
			Name:    p.Name,
			Label:   p.Label,
			Unit:    p.Unit,
			Min:     p.Min,
			Max:     p.Max,
			Default: p.Default,
			Column:  p.Column,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
