package api

import "time"

// logsResponse is the response of every operation that produces log lines.
type logsResponse struct {
	Success bool     `json:"success"`
	Logs    []string `json:"logs"`
}

type downloadRequest struct {
	MagnetLinks []string `json:"magnet_links"`
	ServerAddr  string   `json:"server_addr"`
}

type subfoldersRequest struct {
	RootFolder string `json:"root_folder"`
}

type subfoldersResponse struct {
	Success    bool     `json:"success"`
	Subfolders []string `json:"subfolders"`
}

type moveRequest struct {
	RootFolder        string `json:"root_folder"`
	Keyword           string `json:"keyword"`
	TargetFolder      string `json:"target_folder"`
	CreateIfNotExists *bool  `json:"create_if_not_exists"`
	Recursive         bool   `json:"recursive"`
	Preview           *bool  `json:"preview"`
}

type renameRequest struct {
	FolderPath     string  `json:"folder_path"`
	Prefix         *string `json:"prefix"`
	CustomPattern  string  `json:"custom_pattern"`
	Preview        *bool   `json:"preview"`
	AllowOverwrite bool    `json:"allow_overwrite"`
}

type deleteEmptyRequest struct {
	RootFolder string `json:"root_folder"`
	Keyword    string `json:"keyword"`
	Recursive  bool   `json:"recursive"`
	Preview    *bool  `json:"preview"`
}

// historyResponse is the API representation of a recorded operation.
type historyResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	Summary   string    `json:"summary"`
	Logs      []string  `json:"logs"`
	OK        bool      `json:"ok"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type listHistoryResponse struct {
	Success bool              `json:"success"`
	Items   []historyResponse `json:"items"`
}

type historyEntryResponse struct {
	Success bool            `json:"success"`
	Item    historyResponse `json:"item"`
}

type statusResponse struct {
	Success        bool     `json:"success"`
	Version        string   `json:"version"`
	BrowserEnabled bool     `json:"browser_enabled"`
	AllowedRoots   []string `json:"allowed_roots"`
}
