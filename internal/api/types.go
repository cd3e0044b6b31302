package api

import (
	"net/url"
	"strconv"
	"time"
)

// User mirrors the server's user object. Quota and dedup figures are
// authoritative only from the server; the client never computes them.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	QuotaUsed    int64     `json:"quota_used"`
	QuotaMax     int64     `json:"quota_max"`
	StorageSaved int64     `json:"storage_saved"`
	CreatedAt    time.Time `json:"created_at"`
}

// Admin reports whether the user may access the admin endpoints.
func (u User) Admin() bool { return u.Role == "admin" }

// FileRecord is one logical file as the server reports it. Only Downloads
// changes over a record's lifetime, and only as a server-observed side
// effect of downloads.
type FileRecord struct {
	ID             int64     `json:"id"`
	OriginalName   string    `json:"original_name"`
	Size           int64     `json:"size"`
	ActualMimeType string    `json:"actual_mime_type"`
	Downloads      int64     `json:"downloads"`
	Tags           string    `json:"tags"`
	IsDeduped      bool      `json:"is_deduped"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShareLink is the server's response to a share creation. Expiration is
// enforced server-side; the client only displays ExpiresAt.
type ShareLink struct {
	ID        int64      `json:"id"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Downloads int64      `json:"downloads"`
	CreatedAt time.Time  `json:"created_at"`
}

// StorageStats are the cross-user aggregate numbers from /admin/stats.
type StorageStats struct {
	TotalFiles   int64   `json:"total_files"`
	UniqueBlocks int64   `json:"unique_blocks"`
	LogicalSize  int64   `json:"logical_size"`
	PhysicalSize int64   `json:"physical_size"`
	SpaceSaved   int64   `json:"space_saved"`
	DedupRatio   float64 `json:"deduplication_ratio"`
	Efficiency   string  `json:"efficiency"`
}

// AuditLogEntry is a read-only admin audit record.
type AuditLogEntry struct {
	ID        int64     `json:"id"`
	User      User      `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadResult is the mixed per-file outcome of a multipart upload.
// A non-empty Errors slice alongside accepted files is still a success
// at the transport level.
type UploadResult struct {
	Uploaded []FileRecord `json:"uploaded_files"`
	Errors   []string     `json:"errors"`
}

// SearchFilters is a sparse filter set for listing files. Zero-valued
// fields are omitted from the query entirely, never sent as empty
// strings. Sizes are bytes; unit conversion belongs to the UI boundary.
type SearchFilters struct {
	Name     string
	MimeType string
	SizeMin  int64
	SizeMax  int64
	DateFrom string
	DateTo   string
	Tags     string
	Uploader string
}

// Values encodes only the defined fields as query parameters.
func (f SearchFilters) Values() url.Values {
	v := url.Values{}
	if f.Name != "" {
		v.Set("name", f.Name)
	}
	if f.MimeType != "" {
		v.Set("mime_type", f.MimeType)
	}
	if f.SizeMin > 0 {
		v.Set("size_min", strconv.FormatInt(f.SizeMin, 10))
	}
	if f.SizeMax > 0 {
		v.Set("size_max", strconv.FormatInt(f.SizeMax, 10))
	}
	if f.DateFrom != "" {
		v.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		v.Set("date_to", f.DateTo)
	}
	if f.Tags != "" {
		v.Set("tags", f.Tags)
	}
	if f.Uploader != "" {
		v.Set("uploader", f.Uploader)
	}
	return v
}
