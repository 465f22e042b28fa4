// Package api implements the JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/vmunix/nasbox/internal/folderlock"
	"github.com/vmunix/nasbox/internal/history"
	"github.com/vmunix/nasbox/internal/magnet"
	"github.com/vmunix/nasbox/internal/maintenance"
	"github.com/vmunix/nasbox/internal/rename"
)

// Config holds API server configuration.
type Config struct {
	Version       string
	AllowedRoots  []string
	DefaultPrefix string
	MoveMode      os.FileMode
	CORSOrigins   []string
	StaticDir     string
}

// Server is the API server.
type Server struct {
	deps   ServerDeps
	cfg    Config
	logger *slog.Logger
}

// New creates a new API server.
func New(deps ServerDeps, cfg Config, logger *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultPrefix == "" {
		cfg.DefaultPrefix = "NewFile_"
	}
	return &Server{deps: deps, cfg: cfg, logger: logger}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Browser
	mux.HandleFunc("POST /api/download", s.requireSubmitter(s.download))

	// Files
	mux.HandleFunc("GET /api/list_subfolders", s.listSubfolders)
	mux.HandleFunc("POST /api/list_subfolders", s.listSubfolders)
	mux.HandleFunc("POST /api/move_files", s.moveFiles)
	mux.HandleFunc("POST /api/rename_files", s.renameFiles)
	mux.HandleFunc("POST /api/delete_empty_folders", s.deleteEmptyFolders)

	// System
	mux.HandleFunc("GET /api/history", s.listHistory)
	mux.HandleFunc("GET /api/history/{id}", s.getHistory)
	mux.HandleFunc("GET /api/status", s.getStatus)

	if s.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
}

// Handler returns the routes wrapped in the CORS and request logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return logRequests(cors(mux, s.cfg.CORSOrigins), s.logger)
}

// Error response
type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Logs    []string `json:"logs,omitempty"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeFailure maps err to a status and code; logs, when present, are
// returned alongside so callers see how far the operation got.
func writeFailure(w http.ResponseWriter, err error, logs []string) {
	status, code := classify(err)
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code, Logs: logs})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, folderlock.ErrBusy):
		return http.StatusConflict, "BUSY"
	case errors.Is(err, maintenance.ErrPathNotAllowed):
		return http.StatusForbidden, "PATH_NOT_ALLOWED"
	case errors.Is(err, rename.ErrNotFound), errors.Is(err, rename.ErrNotADirectory),
		errors.Is(err, maintenance.ErrNotFound):
		return http.StatusBadRequest, "FOLDER_NOT_FOUND"
	case errors.Is(err, rename.ErrInvalidInput), errors.Is(err, maintenance.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, magnet.ErrInvalidAddress):
		return http.StatusBadRequest, "INVALID_ADDRESS"
	case errors.Is(err, magnet.ErrBrowser):
		return http.StatusBadGateway, "BROWSER_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// decodeJSON reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// boolOr dereferences an optional flag.
func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// checkPaths applies the allowed-roots policy to every non-empty path.
func (s *Server) checkPaths(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := maintenance.CheckPath(p, s.cfg.AllowedRoots); err != nil {
			return err
		}
	}
	return nil
}

// lockFolders takes the folder lock for every distinct path. On failure any
// lock already taken is released.
func (s *Server) lockFolders(paths ...string) (func(), error) {
	var unlocks []func()
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		unlock, err := s.deps.Locker.TryLock(p)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// record stores an executed operation. Failures are logged and never reach
// the client.
func (s *Server) record(r *http.Request, kind history.Kind, path string, logs []string, ok bool) {
	summary := ""
	if len(logs) > 0 {
		summary = logs[len(logs)-1]
	}
	e := &history.Entry{
		Kind:      kind,
		Path:      path,
		Summary:   summary,
		Logs:      logs,
		OK:        ok,
		RequestID: requestIDFrom(r.Context()),
	}
	if err := s.deps.History.Add(e); err != nil {
		s.logger.Warn("record history", "kind", kind, "path", path, "error", err)
	}
}

// trimAll strips surrounding whitespace from every field in place.
func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

func required(fields ...string) error {
	var missing []string
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			missing = append(missing, fields[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field: %s", strings.Join(missing, ", "))
	}
	return nil
}
