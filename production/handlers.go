package production

import (
	"encoding/json"
	"net/http"

	"plateful/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler exposes the runner over HTTP for the back office.
type Handler struct {
	Runner *Runner
}

func NewHandler(runner *Runner) *Handler {
	return &Handler{Runner: runner}
}

// StartRun kicks off aggregation for a collection date and returns the
// meal-stage summary immediately; ingredient totals stream in afterwards.
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		body.Date = r.URL.Query().Get("date")
	}
	if body.Date == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Production date is required")
		return
	}

	summary, err := h.Runner.StartRun(r.Context(), body.Date)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": summary})
}

// RetryIngredients re-runs only the ingredient stage for the current run.
func (h *Handler) RetryIngredients(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.Runner.RetryIngredients(r.Context()); err != nil {
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

// GetSummary returns the latest published summary, whatever its state.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "data": h.Runner.Snapshot()})
}
