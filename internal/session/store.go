package session

import (
    "context"
    "time"
)

// Session tracks one uploaded document through its conversion lifecycle.
type Session struct {
    ID         string    `json:"id"`
    Status     string    `json:"status"` // processing | done | failed
    Language   string    `json:"language"`
    UploadPath string    `json:"upload_path"`
    OutputPath string    `json:"output_path,omitempty"`
    PageCount  int       `json:"page_count,omitempty"`
    Error      string    `json:"error,omitempty"`
    Created    time.Time `json:"created"`
}

// Store is a TTL key-value store for sessions, owned by the HTTP layer.
// Entries expire after the TTL configured at construction.
type Store interface {
    Set(ctx context.Context, s Session) error
    Get(ctx context.Context, id string) (Session, bool, error)
    Delete(ctx context.Context, id string) error
    Close() error
}
