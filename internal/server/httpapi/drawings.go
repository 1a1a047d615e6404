package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
)

type drawingRequest struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// createDrawingRequest tells a missing data key from an empty drawing.
type createDrawingRequest struct {
	Name string  `json:"name"`
	Data *string `json:"data"`
}

type createDrawingResponse struct {
	ID int64 `json:"id"`
}

type drawingResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

type drawingListItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type drawingListResponse struct {
	Results []drawingListItem `json:"results"`
}

func (h *handlers) createDrawing(w http.ResponseWriter, r *http.Request) {
	user, _, _ := userFromContext(r.Context())

	var req createDrawingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Data == nil {
		writeError(w, http.StatusBadRequest, "Name and data are required")
		return
	}

	d, err := h.drawings.Create(r.Context(), user.ID, req.Name, *req.Data)
	if err != nil {
		h.drawingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createDrawingResponse{ID: d.ID})
}

func (h *handlers) getDrawing(w http.ResponseWriter, r *http.Request) {
	user, _, _ := userFromContext(r.Context())
	id, ok := drawingID(w, r)
	if !ok {
		return
	}

	d, err := h.drawings.Get(r.Context(), user.ID, id)
	if err != nil {
		h.drawingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drawingResponse{
		ID:        d.ID,
		UserID:    d.UserID,
		Name:      d.Name,
		Data:      d.Data,
		CreatedAt: d.CreatedAt,
	})
}

func (h *handlers) updateDrawing(w http.ResponseWriter, r *http.Request) {
	user, _, _ := userFromContext(r.Context())
	id, ok := drawingID(w, r)
	if !ok {
		return
	}

	var req drawingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.drawings.Update(r.Context(), user.ID, id, models.DrawingPatch{Name: req.Name, Data: req.Data}); err != nil {
		h.drawingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyResponse{})
}

func (h *handlers) deleteDrawing(w http.ResponseWriter, r *http.Request) {
	user, _, _ := userFromContext(r.Context())
	id, ok := drawingID(w, r)
	if !ok {
		return
	}

	if err := h.drawings.Delete(r.Context(), user.ID, id); err != nil {
		h.drawingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyResponse{})
}

func (h *handlers) listDrawings(w http.ResponseWriter, r *http.Request) {
	user, _, _ := userFromContext(r.Context())

	list, err := h.drawings.List(r.Context(), user.ID)
	if err != nil {
		h.drawingError(w, r, err)
		return
	}

	resp := drawingListResponse{Results: make([]drawingListItem, 0, len(list))}
	for _, d := range list {
		resp.Results = append(resp.Results, drawingListItem{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

// drawingID parses the {id} path value. Ids that cannot exist are 404.
func drawingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}

func (h *handlers) drawingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorBadRequest):
		writeError(w, http.StatusBadRequest, "Name and data are required")
	default:
		h.log.Error(r.Context(), "drawing request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}
