package ui

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

const ledgerRows = 50

func (h *Handler) artifacts(w http.ResponseWriter, r *http.Request) {
	vm := h.newViewModel("Artifacts")
	vm.Current = h.Pipeline.Bundle().Results

	if h.Ledger != nil {
		loads, err := h.Ledger.List(r.Context(), ledgerRows)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		vm.Loads = loads
	}
	h.render(w, http.StatusOK, "artifacts.html", vm)
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Loader == nil {
		http.Error(w, "reload not available", http.StatusNotImplemented)
		return
	}

	b := h.Pipeline.Reload(h.Loader)
	log.Info().Bool("ready", b.Ready()).Msg("artifacts reloaded")
	if h.OnReload != nil {
		h.OnReload(b)
	}
	http.Redirect(w, r, "/ui/artifacts", http.StatusSeeOther)
}
