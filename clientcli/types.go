package clientcli

import "time"

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath  string
	RemoteName string // optional, defaults to the local base name
	Owner      string
	Replace    bool // replace an existing object instead of creating
}

// UploadResult represents the result of an upload.
type UploadResult struct {
	LocalPath  string    `json:"local_path"`
	Name       string    `json:"name"`
	URL        string    `json:"url,omitempty"`
	Owner      string    `json:"owner"`
	ModifiedAt time.Time `json:"modified_at"`
	Replaced   bool      `json:"replaced"`
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemoteName string
	LocalPath  string // empty = derive from remote, "-" = stdout
	Owner      string
}

// DownloadResult represents the result of downloading an object.
type DownloadResult struct {
	RemoteName string `json:"name"`
	LocalPath  string `json:"local_path"`
	Size       int64  `json:"size_bytes"`
}

// DeleteResult represents the result of deleting a single object.
type DeleteResult struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// QueryOptions configures a catalog query.
type QueryOptions struct {
	FilterType       string
	CreationDate     string // RFC 3339, for the creation-date filters
	ModificationDate string // RFC 3339, for ByModificationDate
	Owner            string // for ByOwner
}

// CatalogEntry mirrors a single catalog result from the server.
type CatalogEntry struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// TransferOptions configures an ownership transfer.
type TransferOptions struct {
	OldOwner string
	NewOwner string
}

// serverCreateResponse mirrors the JSON response for a create.
type serverCreateResponse struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// serverReplaceResponse mirrors the JSON response for a replace.
type serverReplaceResponse struct {
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	ModifiedAt time.Time `json:"modified_at"`
}
