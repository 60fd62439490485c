package imagevault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ObjectStore is the persistence boundary for blob/sidecar pairs.
// Implementations must keep the two halves of an object consistent per
// name: concurrent writers on the same name serialize, and a pair whose
// blob or sidecar is missing reads as not found.
type ObjectStore interface {
	// Create establishes both blob and sidecar for a new object.
	// Returns ErrConflict if the name is already taken.
	Create(ctx context.Context, name string, content io.Reader, owner string) (Metadata, error)

	// Replace overwrites the blob of an existing object and bumps its
	// modification time. Owner and creation time are preserved.
	// Returns ErrNotFound if either half is missing, ErrForbidden if
	// the claimed owner does not match.
	Replace(ctx context.Context, name string, content io.Reader, claimedOwner string) (Metadata, error)

	// Retrieve opens the blob of an object for reading after the
	// ownership check passes. The caller closes the reader.
	Retrieve(ctx context.Context, name string, claimedOwner string) (io.ReadSeekCloser, Metadata, error)

	// Delete removes blob and sidecar. The blob goes first, so a crash
	// between the two still reads as not found afterwards.
	Delete(ctx context.Context, name string, claimedOwner string) error

	// Enumerate rescans the storage directory and returns every object
	// whose sidecar decodes, in directory order. Pairs with a missing
	// half or an undecodable sidecar are skipped, not reported.
	// There is no snapshot isolation against concurrent writers.
	Enumerate(ctx context.Context) ([]StoredObject, error)

	// SetOwner rewrites only the owner field of an object's sidecar.
	// The blob and the modification time are untouched.
	SetOwner(ctx context.Context, name string, owner string) (Metadata, error)
}

// Service validates request-level input and drives the object store,
// the catalog query engine, and ownership transfers.
type Service struct {
	store ObjectStore
}

func NewService(store ObjectStore) (*Service, error) {
	if store == nil {
		return nil, errors.New("new service: store is required")
	}
	return &Service{store: store}, nil
}

// Create stores a new object under the canonical name derived from
// fileName and returns that name.
func (s *Service) Create(ctx context.Context, fileName string, content io.Reader, owner string) (string, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return "", Metadata{}, fmt.Errorf("create object: %w", err)
	}

	if owner == "" {
		return "", Metadata{}, fmt.Errorf("create object: %w: no owner assigned", ErrInvalidInput)
	}

	name, err := ParseObjectName(fileName)
	if err != nil {
		return "", Metadata{}, fmt.Errorf("create object: %w", err)
	}

	meta, err := s.store.Create(ctx, name, content, owner)
	if err != nil {
		return "", Metadata{}, fmt.Errorf("create object %s: %w", name, err)
	}

	return name, meta, nil
}

// Retrieve returns the blob of an object once the claimed owner passes
// the ownership check. The caller closes the reader.
func (s *Service) Retrieve(ctx context.Context, fileName string, claimedOwner string) (io.ReadSeekCloser, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, fmt.Errorf("retrieve object: %w", err)
	}

	if claimedOwner == "" {
		return nil, Metadata{}, fmt.Errorf("retrieve object: %w: no owner assigned", ErrInvalidInput)
	}

	name, err := ParseObjectName(fileName)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("retrieve object: %w", err)
	}

	content, meta, err := s.store.Retrieve(ctx, name, claimedOwner)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("retrieve object %s: %w", name, err)
	}

	return content, meta, nil
}

// Replace overwrites the content of an existing object. The stored
// owner is preserved; only the modification time changes.
func (s *Service) Replace(ctx context.Context, fileName string, content io.Reader, claimedOwner string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, fmt.Errorf("replace object: %w", err)
	}

	if claimedOwner == "" {
		return Metadata{}, fmt.Errorf("replace object: %w: no owner assigned", ErrInvalidInput)
	}

	name, err := ParseObjectName(fileName)
	if err != nil {
		return Metadata{}, fmt.Errorf("replace object: %w", err)
	}

	meta, err := s.store.Replace(ctx, name, content, claimedOwner)
	if err != nil {
		return Metadata{}, fmt.Errorf("replace object %s: %w", name, err)
	}

	return meta, nil
}

// Delete removes an object after the ownership check passes.
func (s *Service) Delete(ctx context.Context, fileName string, claimedOwner string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if claimedOwner == "" {
		return fmt.Errorf("delete object: %w: no owner assigned", ErrInvalidInput)
	}

	name, err := ParseObjectName(fileName)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if err := s.store.Delete(ctx, name, claimedOwner); err != nil {
		return fmt.Errorf("delete object %s: %w", name, err)
	}

	return nil
}

// Query scans every sidecar in the store, applies the filter predicate,
// and returns the matching objects as name/owner pairs.
//
// A date-based filter whose date parameter is absent returns an empty
// result rather than an error, as does ByOwner without an owner. The
// creation-date filters sort by creation time in the requested
// direction; the other filters keep directory order.
func (s *Service) Query(ctx context.Context, q FilterQuery) ([]CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}

	if !q.Type.IsValid() {
		return nil, fmt.Errorf("query catalog: %w: %q", ErrInvalidFilter, q.Type)
	}

	objects, err := s.store.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}

	matched := make([]StoredObject, 0, len(objects))
	for _, obj := range objects {
		switch q.Type {
		case FilterByModificationDate:
			if q.ModificationDate != nil && obj.Metadata.ModifiedAt.Before(*q.ModificationDate) {
				matched = append(matched, obj)
			}
		case FilterByCreationDateAscending, FilterByCreationDateDescending:
			if q.CreationDate != nil && obj.Metadata.CreatedAt.After(*q.CreationDate) {
				matched = append(matched, obj)
			}
		case FilterByOwner:
			if q.Owner != "" && obj.Metadata.Owner == q.Owner {
				matched = append(matched, obj)
			}
		}
	}

	switch q.Type {
	case FilterByCreationDateAscending:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Metadata.CreatedAt.Before(matched[j].Metadata.CreatedAt)
		})
	case FilterByCreationDateDescending:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[j].Metadata.CreatedAt.Before(matched[i].Metadata.CreatedAt)
		})
	}

	entries := make([]CatalogEntry, 0, len(matched))
	for _, obj := range matched {
		entries = append(entries, CatalogEntry{Name: obj.Name, Owner: obj.Metadata.Owner})
	}

	return entries, nil
}

// Transfer rewrites the owner of every object held by oldOwner to
// newOwner and returns newOwner's holdings.
//
// The result deliberately includes objects newOwner already held before
// the call, not just the ones transferred; callers relying on the
// returned list get the complete set. The rewrite is not atomic across
// objects: a failure mid-scan leaves earlier objects transferred.
func (s *Service) Transfer(ctx context.Context, oldOwner, newOwner string) ([]CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("transfer ownership: %w", err)
	}

	if oldOwner == "" || newOwner == "" {
		return nil, fmt.Errorf("transfer ownership: %w: both owners are required", ErrInvalidInput)
	}

	objects, err := s.store.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("transfer ownership: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(objects))
	for _, obj := range objects {
		owner := obj.Metadata.Owner

		if owner == oldOwner {
			meta, setErr := s.store.SetOwner(ctx, obj.Name, newOwner)
			if errors.Is(setErr, ErrNotFound) {
				// Deleted between the scan and the rewrite.
				continue
			}
			if setErr != nil {
				return nil, fmt.Errorf("transfer ownership %s: %w", obj.Name, setErr)
			}
			owner = meta.Owner
		}

		if owner == newOwner {
			entries = append(entries, CatalogEntry{Name: obj.Name, Owner: owner})
		}
	}

	return entries, nil
}
