package api

import (
	"errors"
	"net/http"

	"github.com/vmunix/nasbox/internal/history"
)

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	const maxLimit = 1000
	if limit > maxLimit {
		limit = maxLimit
	}

	filter := history.Filter{Limit: limit}
	if v := r.URL.Query().Get("kind"); v != "" {
		kind := history.Kind(v)
		if !kind.Valid() {
			writeError(w, http.StatusBadRequest, "INVALID_KIND", "kind must be one of rename, move, delete_empty, download")
			return
		}
		filter.Kind = &kind
	}

	entries, err := s.deps.History.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resp := listHistoryResponse{Success: true, Items: make([]historyResponse, len(entries))}
	for i, e := range entries {
		resp.Items[i] = historyToResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	e, err := s.deps.History.Get(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "History entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, historyEntryResponse{Success: true, Item: historyToResponse(e)})
}

func historyToResponse(e *history.Entry) historyResponse {
	return historyResponse{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Path:      e.Path,
		Summary:   e.Summary,
		Logs:      e.Logs,
		OK:        e.OK,
		RequestID: e.RequestID,
		CreatedAt: e.CreatedAt,
	}
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	roots := s.cfg.AllowedRoots
	if roots == nil {
		roots = []string{}
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Success:        true,
		Version:        s.cfg.Version,
		BrowserEnabled: s.deps.Submitter != nil,
		AllowedRoots:   roots,
	})
}
