package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-courier-dashboard/components/shipments"
	"github.com/goliatone/go-courier-dashboard/components/shipments/commands"
	"github.com/goliatone/go-courier-dashboard/components/shipments/queries"
)

// ViewerFunc resolves the viewer of a request.
type ViewerFunc func(*http.Request) shipments.ViewerContext

// AssignPayload is the body of an assignment request.
type AssignPayload struct {
	Person string `json:"person"`
}

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Assign  gocommand.Commander[commands.AssignPickupInput]
	Refresh gocommand.Commander[commands.RefreshBoardInput]
	Dismiss gocommand.Commander[commands.DismissFailureInput]
	View    gocommand.Querier[queries.BoardViewInput, shipments.BoardView]
	Viewer  ViewerFunc
}

func (h *Handlers) viewer(r *http.Request) shipments.ViewerContext {
	if h.Viewer == nil {
		return shipments.ViewerContext{}
	}
	return h.Viewer(r)
}

func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	view, err := h.View.Query(r.Context(), queries.BoardViewInput{
		Viewer: h.viewer(r),
		Query:  shipments.ViewQuery{Tab: r.URL.Query().Get("tab"), Page: page},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleAssign(w http.ResponseWriter, r *http.Request, awb string) {
	if awb == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "awb number is required"})
		return
	}
	var payload AssignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var result shipments.AssignResult
	err := h.Assign.Execute(r.Context(), commands.AssignPickupInput{
		Viewer:    h.viewer(r),
		AWBNumber: awb,
		Person:    payload.Person,
		Result:    &result,
	})
	if err != nil {
		status, message := ErrorStatus(err)
		body := map[string]any{"error": message}
		var failed *shipments.AssignmentFailedError
		if errors.As(err, &failed) {
			body["result"] = failed.Result
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Refresh.Execute(r.Context(), commands.RefreshBoardInput{Viewer: h.viewer(r)}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *Handlers) HandleDismissFailure(w http.ResponseWriter, r *http.Request, awb string) {
	if err := h.Dismiss.Execute(r.Context(), commands.DismissFailureInput{Viewer: h.viewer(r), AWBNumber: awb}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	status, message := ErrorStatus(err)
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
