package entity

import "time"

// State is a step of a single archive processing request.
type State string

const (
	StateIdle      State = "idle"
	StateExtracted State = "extracted"
	StateRenamed   State = "renamed"
	StateBuilt     State = "built"
	StateDelivered State = "delivered"
	StateCleanedUp State = "cleaned_up"
	StateFailed    State = "failed"
)

const (
	ResultReady     = "ready"
	ResultDelivered = "delivered"

	EventCompleted = "completed"
	EventFailed    = "failed"
)

type RenameMapping struct {
	Dir  string `json:"dir"` // slash-separated, relative to the workspace root; "" is the root
	From string `json:"from"`
	To   string `json:"to"`
	Rank int    `json:"rank"`
}

type ImageInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Manifest struct {
	Files       int             `json:"files"`
	Images      int             `json:"images"`
	Directories int             `json:"directories"`
	Renames     []RenameMapping `json:"renames"`
	Dimensions  []ImageInfo     `json:"dimensions,omitempty"`
}

// Result is a produced archive kept for a later one-time download.
type Result struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	FileName  string    `json:"file_name"`
	Size      int64     `json:"size"`
	Manifest  *Manifest `json:"manifest,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *Result) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

type ArchiveEvent struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Kind       string    `json:"kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	Files      int       `json:"files"`
	Images     int       `json:"images"`
	DurationMs int64     `json:"duration_ms"`
	Time       time.Time `json:"time"`
}

type UploadResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Manifest    *Manifest `json:"manifest,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
