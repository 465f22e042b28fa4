package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/nasbox/internal/api/mocks"
	"github.com/vmunix/nasbox/internal/folderlock"
	"github.com/vmunix/nasbox/internal/history"
	"github.com/vmunix/nasbox/internal/magnet"
	"github.com/vmunix/nasbox/internal/migrations"
)

func setupHistory(t *testing.T) *history.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(db), "apply schema")
	return history.NewStore(db)
}

type testEnv struct {
	srv     *Server
	handler http.Handler
	history *history.Store
	locker  *folderlock.Locker
}

func newTestEnv(t *testing.T, submitter Submitter, cfg Config) *testEnv {
	t.Helper()
	env := &testEnv{
		history: setupHistory(t),
		locker:  folderlock.New(filepath.Join(t.TempDir(), "locks")),
	}
	srv, err := New(ServerDeps{History: env.history, Locker: env.locker, Submitter: submitter}, cfg, nil)
	require.NoError(t, err)
	env.srv = srv
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o644))
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(ServerDeps{}, Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingDependency)

	_, err = New(ServerDeps{History: setupHistory(t)}, Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestRenameFiles_PreviewByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "showEP01.mkv"))
	writeFile(t, filepath.Join(dir, "random5.mp4"))
	env := newTestEnv(t, nil, Config{})

	w := env.do(t, http.MethodPost, "/api/rename_files", map[string]any{
		"folder_path": dir,
		"prefix":      "Show-",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[logsResponse](t, w)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Logs, "showEP01.mkv -> Show-01.mkv")
	assert.Contains(t, resp.Logs, "random5.mp4 -> Show-5.mp4")
	assert.FileExists(t, filepath.Join(dir, "showEP01.mkv"), "preview leaves files alone")

	entries, err := env.history.List(history.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries, "previews are not recorded")
}

func TestRenameFiles_ApplyRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "showEP01.mkv"))
	env := newTestEnv(t, nil, Config{DefaultPrefix: "Ep"})

	w := env.do(t, http.MethodPost, "/api/rename_files", map[string]any{
		"folder_path": dir,
		"preview":     false,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.FileExists(t, filepath.Join(dir, "Ep01.mkv"), "configured default prefix applies")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	entries, err := env.history.List(history.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, history.KindRename, entries[0].Kind)
	assert.Equal(t, dir, entries[0].Path)
	assert.True(t, entries[0].OK)
	assert.Equal(t, w.Header().Get(RequestIDHeader), entries[0].RequestID)
}

func TestRenameFiles_MissingFolder(t *testing.T) {
	env := newTestEnv(t, nil, Config{})

	w := env.do(t, http.MethodPost, "/api/rename_files", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode[errorResponse](t, w).Code)

	w = env.do(t, http.MethodPost, "/api/rename_files", map[string]any{
		"folder_path": filepath.Join(t.TempDir(), "gone"),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[errorResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "FOLDER_NOT_FOUND", resp.Code)
	assert.Len(t, resp.Logs, 1)
}

func TestRenameFiles_TrimsInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "showEP01.mkv"))
	env := newTestEnv(t, nil, Config{})

	w := env.do(t, http.MethodPost, "/api/rename_files", map[string]any{
		"folder_path":    "  " + dir + " \t",
		"prefix":         " Show-  ",
		"custom_pattern": "  ",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode[logsResponse](t, w).Logs, "showEP01.mkv -> Show-01.mkv")
}

func TestMoveFiles_TrimsInputs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Show S1", "e1.mkv"))
	env := newTestEnv(t, nil, Config{})

	w := env.do(t, http.MethodPost, "/api/move_files", map[string]any{
		"root_folder":   root + " ",
		"keyword":       " Show ",
		"target_folder": " " + filepath.Join(root, "out"),
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode[logsResponse](t, w).Logs,
		"[PREVIEW] "+filepath.Join(root, "Show S1", "e1.mkv")+" -> "+filepath.Join(root, "out", "e1.mkv"))
}

func TestRenameFiles_FolderIsRegularFile(t *testing.T) {
	env := newTestEnv(t, nil, Config{})
	file := filepath.Join(t.TempDir(), "afile")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	w := env.do(t, http.MethodPost, "/api/rename_files", map[string]any{"folder_path": file})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "FOLDER_NOT_FOUND", resp.Code)
	assert.Contains(t, resp.Error, "not a directory")
}

func TestRenameFiles_Busy(t *testing.T) {
	dir := t.TempDir()
	env := newTestEnv(t, nil, Config{})

	unlock, err := env.locker.TryLock(dir)
	require.NoError(t, err)
	defer unlock()

	w := env.do(t, http.MethodPost, "/api/rename_files", map[string]any{"folder_path": dir, "preview": false})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "BUSY", decode[errorResponse](t, w).Code)

	w = env.do(t, http.MethodPost, "/api/rename_files", map[string]any{"folder_path": dir})
	assert.Equal(t, http.StatusOK, w.Code, "previews do not lock")
}

func TestRenameFiles_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, nil, Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/rename_files", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", decode[errorResponse](t, w).Code)
}

func TestPathPolicy(t *testing.T) {
	allowed := t.TempDir()
	env := newTestEnv(t, nil, Config{AllowedRoots: []string{allowed}})

	w := env.do(t, http.MethodGet, "/api/list_subfolders?root_folder=/etc", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PATH_NOT_ALLOWED", decode[errorResponse](t, w).Code)

	w = env.do(t, http.MethodPost, "/api/move_files", map[string]any{
		"root_folder":   allowed,
		"keyword":       "x",
		"target_folder": "/tmp/elsewhere",
	})
	assert.Equal(t, http.StatusForbidden, w.Code, "target folder is checked too")
}

func TestListSubfolders(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	env := newTestEnv(t, nil, Config{})

	w := env.do(t, http.MethodGet, "/api/list_subfolders?root_folder="+root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a", "b"}, decode[subfoldersResponse](t, w).Subfolders)

	w = env.do(t, http.MethodPost, "/api/list_subfolders", map[string]any{"root_folder": root})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a", "b"}, decode[subfoldersResponse](t, w).Subfolders)

	w = env.do(t, http.MethodGet, "/api/list_subfolders", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/list_subfolders?root_folder="+filepath.Join(root, "none"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FOLDER_NOT_FOUND", decode[errorResponse](t, w).Code)
}

func TestMoveFiles(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "collected")
	writeFile(t, filepath.Join(root, "Show S1", "e1.mkv"))
	env := newTestEnv(t, nil, Config{})

	w := env.do(t, http.MethodPost, "/api/move_files", map[string]any{
		"root_folder":   root,
		"keyword":       "Show",
		"target_folder": target,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoDirExists(t, target, "preview is the default")

	w = env.do(t, http.MethodPost, "/api/move_files", map[string]any{
		"root_folder":   root,
		"keyword":       "Show",
		"target_folder": target,
		"preview":       false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.FileExists(t, filepath.Join(target, "e1.mkv"), "target created by default")

	move := history.KindMove
	entries, err := env.history.List(history.Filter{Kind: &move})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMoveFiles_MissingFields(t *testing.T) {
	env := newTestEnv(t, nil, Config{})
	w := env.do(t, http.MethodPost, "/api/move_files", map[string]any{"root_folder": t.TempDir()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorResponse](t, w).Error, "keyword, target_folder")
}

func TestDeleteEmptyFolders(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tmp-a"), 0o755))
	env := newTestEnv(t, nil, Config{})

	w := env.do(t, http.MethodPost, "/api/delete_empty_folders", map[string]any{
		"root_folder": root,
		"keyword":     "tmp",
		"preview":     false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoDirExists(t, filepath.Join(root, "tmp-a"))
	assert.Contains(t, decode[logsResponse](t, w).Logs, "[DELETED] "+filepath.Join(root, "tmp-a"))
}

func TestDownload_BrowserDisabled(t *testing.T) {
	env := newTestEnv(t, nil, Config{})
	w := env.do(t, http.MethodPost, "/api/download", map[string]any{
		"magnet_links": []string{"magnet:?xt=1"},
		"server_addr":  "http://nas",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "BROWSER_DISABLED", decode[errorResponse](t, w).Code)
}

func TestDownload(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := mocks.NewMockSubmitter(ctrl)
	sub.EXPECT().
		Submit(gomock.Any(), []string{"magnet:?xt=1"}, "http://nas:5000").
		Return([]string{"[1/1] processing: magnet:?xt=1", "[1] download clicked", "processed 1 magnet links"}, nil)
	env := newTestEnv(t, sub, Config{})

	w := env.do(t, http.MethodPost, "/api/download", map[string]any{
		"magnet_links": []string{" magnet:?xt=1 ", ""},
		"server_addr":  "http://nas:5000",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[logsResponse](t, w).Logs, 3)

	entries, err := env.history.List(history.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, history.KindDownload, entries[0].Kind)
	assert.Equal(t, "processed 1 magnet links", entries[0].Summary)
}

func TestDownload_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := mocks.NewMockSubmitter(ctrl)
	env := newTestEnv(t, sub, Config{})

	w := env.do(t, http.MethodPost, "/api/download", map[string]any{"magnet_links": []string{" "}, "server_addr": "http://nas"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/download", map[string]any{"magnet_links": []string{"m"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload_ErrorsMapped(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid address", magnet.ErrInvalidAddress, http.StatusBadRequest, "INVALID_ADDRESS"},
		{"browser", magnet.ErrBrowser, http.StatusBadGateway, "BROWSER_ERROR"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sub := mocks.NewMockSubmitter(ctrl)
			sub.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).Return([]string{"[ERROR] x"}, tt.err)
			env := newTestEnv(t, sub, Config{})

			w := env.do(t, http.MethodPost, "/api/download", map[string]any{
				"magnet_links": []string{"m"},
				"server_addr":  "nas",
			})
			assert.Equal(t, tt.status, w.Code)
			resp := decode[errorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, []string{"[ERROR] x"}, resp.Logs)
		})
	}
}

func TestHistoryAndLocker_Mocked(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockHistoryStore(ctrl)
	locker := mocks.NewMockFolderLocker(ctrl)

	dir := t.TempDir()
	released := false
	locker.EXPECT().TryLock(dir).Return(func() { released = true }, nil)
	store.EXPECT().Add(gomock.Any()).Return(errors.New("disk full"))

	srv, err := New(ServerDeps{History: store, Locker: locker}, Config{}, nil)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]any{"folder_path": dir, "preview": false})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rename_files", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code, "history failures do not fail the request")
	assert.True(t, released, "lock released after the operation")
}

func TestListHistory(t *testing.T) {
	env := newTestEnv(t, nil, Config{})
	require.NoError(t, env.history.Add(&history.Entry{Kind: history.KindMove, Path: "/a", OK: true}))
	require.NoError(t, env.history.Add(&history.Entry{Kind: history.KindRename, Path: "/b", OK: true}))

	w := env.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[listHistoryResponse](t, w).Items, 2)

	w = env.do(t, http.MethodGet, "/api/history?kind=rename", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[listHistoryResponse](t, w).Items
	require.Len(t, items, 1)
	assert.Equal(t, "/b", items[0].Path)

	w = env.do(t, http.MethodGet, "/api/history?kind=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistory(t *testing.T) {
	env := newTestEnv(t, nil, Config{})
	e := &history.Entry{Kind: history.KindMove, Path: "/a", Logs: []string{"[MOVED] x -> y"}, OK: true}
	require.NoError(t, env.history.Add(e))

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/history/%d", e.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"[MOVED] x -> y"}, decode[historyEntryResponse](t, w).Item.Logs)

	w = env.do(t, http.MethodGet, "/api/history/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/history/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, nil, Config{Version: "1.2.3"})
	w := env.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[statusResponse](t, w)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.False(t, resp.BrowserEnabled)
	assert.NotNil(t, resp.AllowedRoots)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, nil, Config{CORSOrigins: []string{"http://ui.local"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/rename_files", nil)
	req.Header.Set("Origin", "http://ui.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://ui.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_Propagated(t *testing.T) {
	env := newTestEnv(t, nil, Config{})
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestStaticFiles(t *testing.T) {
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>nasbox</html>"), 0o644))
	env := newTestEnv(t, nil, Config{StaticDir: static})

	w := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nasbox")
}
