package api

import (
	"net/http"
	"strings"

	"github.com/vmunix/nasbox/internal/history"
	"github.com/vmunix/nasbox/internal/maintenance"
	"github.com/vmunix/nasbox/internal/rename"
)

func (s *Server) listSubfolders(w http.ResponseWriter, r *http.Request) {
	req := subfoldersRequest{RootFolder: r.URL.Query().Get("root_folder")}
	if r.Method == http.MethodPost {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
			return
		}
	}
	trimAll(&req.RootFolder)
	if err := required("root_folder", req.RootFolder); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if err := s.checkPaths(req.RootFolder); err != nil {
		writeFailure(w, err, nil)
		return
	}

	names, err := maintenance.ListSubfolders(req.RootFolder)
	if err != nil {
		writeFailure(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, subfoldersResponse{Success: true, Subfolders: names})
}

func (s *Server) moveFiles(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	trimAll(&req.RootFolder, &req.Keyword, &req.TargetFolder)
	if err := required("root_folder", req.RootFolder, "keyword", req.Keyword, "target_folder", req.TargetFolder); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if err := s.checkPaths(req.RootFolder, req.TargetFolder); err != nil {
		writeFailure(w, err, nil)
		return
	}

	opts := maintenance.MoveOptions{
		Root:         req.RootFolder,
		Keyword:      req.Keyword,
		Target:       req.TargetFolder,
		CreateTarget: boolOr(req.CreateIfNotExists, true),
		Recursive:    req.Recursive,
		Preview:      boolOr(req.Preview, true),
		Mode:         s.cfg.MoveMode,
	}
	if !opts.Preview {
		unlock, err := s.lockFolders(opts.Root, opts.Target)
		if err != nil {
			writeFailure(w, err, nil)
			return
		}
		defer unlock()
	}

	report, err := maintenance.MoveKeywordFiles(opts)
	if !opts.Preview && report != nil {
		s.record(r, history.KindMove, opts.Root, report.Lines, err == nil && report.Failed == 0)
	}
	if err != nil {
		writeFailure(w, err, linesOf(report))
		return
	}
	writeJSON(w, http.StatusOK, logsResponse{Success: true, Logs: report.Lines})
}

func (s *Server) renameFiles(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	trimAll(&req.FolderPath, &req.CustomPattern)
	if err := required("folder_path", req.FolderPath); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if err := s.checkPaths(req.FolderPath); err != nil {
		writeFailure(w, err, nil)
		return
	}

	opts := rename.Options{
		Folder:         req.FolderPath,
		Prefix:         s.cfg.DefaultPrefix,
		CustomPattern:  req.CustomPattern,
		Preview:        boolOr(req.Preview, true),
		AllowOverwrite: req.AllowOverwrite,
	}
	if req.Prefix != nil {
		opts.Prefix = strings.TrimSpace(*req.Prefix)
	}
	if !opts.Preview {
		unlock, err := s.lockFolders(opts.Folder)
		if err != nil {
			writeFailure(w, err, nil)
			return
		}
		defer unlock()
	}

	report, err := rename.Run(opts)
	if !opts.Preview && report != nil {
		s.record(r, history.KindRename, opts.Folder, report.Lines, err == nil && report.Failed == 0)
	}
	if err != nil {
		var logs []string
		if report != nil {
			logs = report.Lines
		}
		writeFailure(w, err, logs)
		return
	}
	writeJSON(w, http.StatusOK, logsResponse{Success: true, Logs: report.Lines})
}

func (s *Server) deleteEmptyFolders(w http.ResponseWriter, r *http.Request) {
	var req deleteEmptyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	trimAll(&req.RootFolder, &req.Keyword)
	if err := required("root_folder", req.RootFolder, "keyword", req.Keyword); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if err := s.checkPaths(req.RootFolder); err != nil {
		writeFailure(w, err, nil)
		return
	}

	opts := maintenance.DeleteOptions{
		Root:      req.RootFolder,
		Keyword:   req.Keyword,
		Recursive: req.Recursive,
		Preview:   boolOr(req.Preview, true),
	}
	if !opts.Preview {
		unlock, err := s.lockFolders(opts.Root)
		if err != nil {
			writeFailure(w, err, nil)
			return
		}
		defer unlock()
	}

	report, err := maintenance.DeleteEmptyKeywordFolders(opts)
	if !opts.Preview && report != nil {
		s.record(r, history.KindDeleteEmpty, opts.Root, report.Lines, err == nil && report.Failed == 0)
	}
	if err != nil {
		writeFailure(w, err, linesOf(report))
		return
	}
	writeJSON(w, http.StatusOK, logsResponse{Success: true, Logs: report.Lines})
}

func linesOf(r *maintenance.Report) []string {
	if r == nil {
		return nil
	}
	return r.Lines
}
