package imagevault

import (
	"fmt"
	"time"
)

// Metadata is the sidecar record stored next to every blob.
type Metadata struct {
	Owner      string    `json:"owner"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// AuthorizedFor reports whether the claimed owner may operate on the
// object this metadata belongs to. The comparison is exact and
// case-sensitive.
func (m Metadata) AuthorizedFor(claimedOwner string) bool {
	return m.Owner == claimedOwner
}

// StoredObject pairs a canonical object name with its decoded sidecar.
type StoredObject struct {
	Name     string
	Metadata Metadata
}

// CatalogEntry is the projection returned by catalog queries and
// ownership transfers.
type CatalogEntry struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// FilterType selects the predicate applied by a catalog query.
type FilterType string

const (
	FilterByModificationDate       FilterType = "ByModificationDate"
	FilterByCreationDateAscending  FilterType = "ByCreationDateAscending"
	FilterByCreationDateDescending FilterType = "ByCreationDateDescending"
	FilterByOwner                  FilterType = "ByOwner"
)

func (f FilterType) IsValid() bool {
	switch f {
	case FilterByModificationDate, FilterByCreationDateAscending, FilterByCreationDateDescending, FilterByOwner:
		return true
	default:
		return false
	}
}

// ParseFilterType validates a filter type string from a request.
func ParseFilterType(s string) (FilterType, error) {
	ft := FilterType(s)
	if !ft.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	return ft, nil
}

// FilterQuery describes a catalog query. The parameter matching the
// filter type must be set; a missing date or owner parameter yields an
// empty result rather than an error.
type FilterQuery struct {
	Type             FilterType
	CreationDate     *time.Time
	ModificationDate *time.Time
	Owner            string
}
