package ui

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcules/motor-speed/internal/params"
	"github.com/mcules/motor-speed/internal/predict"
)

type fieldView struct {
	Name  string
	Label string
	Unit  string
	Help  string
	Min   string
	Max   string
	Value string
}

type formView struct {
	// Columns holds the fields of each form column in feature order.
	Columns [2][]fieldView
}

type resultView struct {
	Text  string
	Units string
}

func newFormView(v params.Vector) formView {
	var f formView
	for i, p := range params.All() {
		col := 0
		if p.Column == 2 {
			col = 1
		}
		f.Columns[col] = append(f.Columns[col], fieldView{
			Name:  p.Name,
			Label: p.Label,
			Unit:  p.Unit,
			Help:  p.Help,
			Min:   params.Format(p.Min),
			Max:   params.Format(p.Max),
			Value: params.Format(v[i]),
		})
	}
	return f
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/ui" {
		http.Redirect(w, r, "/ui/", http.StatusFound)
		return
	}
	if r.URL.Path != "/ui/" {
		http.NotFound(w, r)
		return
	}
	vm := h.newViewModel("Predictor")
	vm.Form = newFormView(params.Defaults())
	h.render(w, http.StatusOK, "predict.html", vm)
}

// predict handles the form submit. Nothing is computed before submit.
func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/ui/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.inputError(w, err)
		return
	}

	v, err := params.Parse(r.PostForm.Get)
	if err != nil {
		h.inputError(w, err)
		return
	}

	vm := h.newViewModel("Predictor")
	vm.Form = newFormView(v)

	pr, err := h.Pipeline.Predict(v)
	switch {
	case errors.Is(err, predict.ErrIncompleteArtifacts):
		vm.Blocked = true
	case err != nil:
		log.Error().Err(err).Msg("prediction failed")
		vm.Blocked = true
	default:
		vm.Result = &resultView{Text: pr.Format(), Units: pr.Units.String()}
	}
	h.render(w, http.StatusOK, "predict.html", vm)
}

func (h *Handler) inputError(w http.ResponseWriter, err error) {
	log.Warn().Err(err).Msg("rejected form input")
	vm := h.newViewModel("Predictor")
	vm.Form = newFormView(params.Defaults())
	vm.InputError = err.Error()
	h.render(w, http.StatusBadRequest, "predict.html", vm)
}
