package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
)

type snapshotRequest struct {
	Data string `json:"data"`
}

type createSnapshotResponse struct {
	ShortKey string `json:"short_key"`
}

type snapshotResponse struct {
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshots need no session.
func (h *handlers) createSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key, err := h.snapshots.Create(r.Context(), req.Data)
	if err != nil {
		h.log.Error(r.Context(), "snapshot create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, createSnapshotResponse{ShortKey: key})
}

func (h *handlers) getSnapshot(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshots.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		h.log.Error(r.Context(), "snapshot get failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse{Data: s.Data, CreatedAt: s.CreatedAt})
}
