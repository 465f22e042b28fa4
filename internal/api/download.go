package api

import (
	"net/http"
	"strings"

	"github.com/vmunix/nasbox/internal/history"
)

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	var links []string
	for _, l := range req.MagnetLinks {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	if len(links) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "missing required field: magnet_links")
		return
	}
	trimAll(&req.ServerAddr)
	if err := required("server_addr", req.ServerAddr); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	logs, err := s.deps.Submitter.Submit(r.Context(), links, req.ServerAddr)
	s.record(r, history.KindDownload, req.ServerAddr, logs, err == nil)
	if err != nil {
		s.logger.Warn("magnet submission aborted", "server_addr", req.ServerAddr, "error", err)
		writeFailure(w, err, logs)
		return
	}
	writeJSON(w, http.StatusOK, logsResponse{Success: true, Logs: logs})
}
