package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client wraps HTTP calls to the nasbox server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new nasbox API client. Browser submissions can take
// minutes, so the timeout is generous.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Logs    []string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d: %s (%s)", e.Status, e.Message, e.Code)
}

func readError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	var decoded struct {
		Error string   `json:"error"`
		Code  string   `json:"code"`
		Logs  []string `json:"logs"`
	}
	if json.Unmarshal(body, &decoded) == nil && decoded.Error != "" {
		apiErr.Message = decoded.Error
		apiErr.Code = decoded.Code
		apiErr.Logs = decoded.Logs
	}
	return apiErr
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// API response types

type LogsResponse struct {
	Success bool     `json:"success"`
	Logs    []string `json:"logs"`
}

type SubfoldersResponse struct {
	Success    bool     `json:"success"`
	Subfolders []string `json:"subfolders"`
}

type HistoryItem struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	Summary   string    `json:"summary"`
	Logs      []string  `json:"logs"`
	OK        bool      `json:"ok"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Success bool          `json:"success"`
	Items   []HistoryItem `json:"items"`
}

type HistoryEntryResponse struct {
	Success bool        `json:"success"`
	Item    HistoryItem `json:"item"`
}

type StatusResponse struct {
	Success        bool     `json:"success"`
	Version        string   `json:"version"`
	BrowserEnabled bool     `json:"browser_enabled"`
	AllowedRoots   []string `json:"allowed_roots"`
}

// API request types

type DownloadRequest struct {
	MagnetLinks []string `json:"magnet_links"`
	ServerAddr  string   `json:"server_addr"`
}

type MoveRequest struct {
	RootFolder        string `json:"root_folder"`
	Keyword           string `json:"keyword"`
	TargetFolder      string `json:"target_folder"`
	CreateIfNotExists bool   `json:"create_if_not_exists"`
	Recursive         bool   `json:"recursive"`
	Preview           bool   `json:"preview"`
}

type RenameRequest struct {
	FolderPath     string  `json:"folder_path"`
	Prefix         *string `json:"prefix,omitempty"`
	CustomPattern  string  `json:"custom_pattern,omitempty"`
	Preview        bool    `json:"preview"`
	AllowOverwrite bool    `json:"allow_overwrite"`
}

type DeleteEmptyRequest struct {
	RootFolder string `json:"root_folder"`
	Keyword    string `json:"keyword"`
	Recursive  bool   `json:"recursive"`
	Preview    bool   `json:"preview"`
}

// Client methods

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Download(req *DownloadRequest) (*LogsResponse, error) {
	var resp LogsResponse
	if err := c.post("/api/download", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Subfolders(root string) (*SubfoldersResponse, error) {
	var resp SubfoldersResponse
	if err := c.get("/api/list_subfolders?root_folder="+url.QueryEscape(root), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Move(req *MoveRequest) (*LogsResponse, error) {
	var resp LogsResponse
	if err := c.post("/api/move_files", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Rename(req *RenameRequest) (*LogsResponse, error) {
	var resp LogsResponse
	if err := c.post("/api/rename_files", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteEmpty(req *DeleteEmptyRequest) (*LogsResponse, error) {
	var resp LogsResponse
	if err := c.post("/api/delete_empty_folders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) History(kind string, limit int) (*HistoryResponse, error) {
	params := url.Values{}
	if kind != "" {
		params.Set("kind", kind)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/history"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp HistoryResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) HistoryEntry(id int64) (*HistoryEntryResponse, error) {
	var resp HistoryEntryResponse
	if err := c.get("/api/history/"+strconv.FormatInt(id, 10), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
