// Package filesystem stores blob/sidecar pairs in a single directory.
// Writes go through temp files renamed into place, and a per-name lock
// registry serializes writers on the same object so concurrent creates
// have exactly one winner and a sidecar is never half-written.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/imagevault"
)

// Store provides object storage over a sandboxed directory root.
type Store struct {
	root *os.Root

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a Store over the given root directory. The root
// provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockName acquires the write lock for a canonical object name and
// returns the unlock func. The lock is keyed by the sidecar name, so
// extension twins sharing a sidecar serialize against each other. Lock
// entries are kept for the lifetime of the store; the registry is
// bounded by the number of distinct names.
func (s *Store) lockName(name string) func() {
	key := imagevault.SidecarName(name)

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Create establishes the blob and its sidecar for a new object.
// Returns imagevault.ErrConflict if a blob with the name or with its
// extension twin already exists. A dangling sidecar without a blob
// counts as absent and is overwritten.
func (s *Store) Create(ctx context.Context, name string, content io.Reader, owner string) (imagevault.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return imagevault.Metadata{}, err
	}

	unlock := s.lockName(name)
	defer unlock()

	if _, err := s.root.Stat(name); err == nil {
		return imagevault.Metadata{}, imagevault.ErrConflict
	} else if !errors.Is(err, os.ErrNotExist) {
		return imagevault.Metadata{}, fmt.Errorf("stat blob: %w", err)
	}

	// Extension twins share one sidecar. If the twin blob exists,
	// writing our sidecar would reassign the twin's owner and creation
	// time, so the name is taken. A sidecar with no blob on either side
	// is dangling and may be overwritten.
	if twin := imagevault.TwinName(name); twin != "" {
		if _, err := s.root.Stat(twin); err == nil {
			return imagevault.Metadata{}, imagevault.ErrConflict
		} else if !errors.Is(err, os.ErrNotExist) {
			return imagevault.Metadata{}, fmt.Errorf("stat blob: %w", err)
		}
	}

	if err := s.writeBlob(ctx, name, content); err != nil {
		return imagevault.Metadata{}, err
	}

	now := time.Now()
	meta := imagevault.Metadata{
		Owner:      owner,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if err := s.writeSidecar(name, meta); err != nil {
		// Roll back the blob so the half-created object does not block
		// a retry with imagevault.ErrConflict.
		if rmErr := s.root.Remove(name); rmErr != nil {
			slog.Warn("failed to remove blob after sidecar write failure", "name", name, "err", rmErr)
		}
		return imagevault.Metadata{}, err
	}

	return meta, nil
}

// Replace overwrites the blob of an existing object and bumps its
// modification time. Owner and creation time are preserved.
func (s *Store) Replace(ctx context.Context, name string, content io.Reader, claimedOwner string) (imagevault.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return imagevault.Metadata{}, err
	}

	unlock := s.lockName(name)
	defer unlock()

	meta, err := s.loadPair(name)
	if err != nil {
		return imagevault.Metadata{}, err
	}

	if !meta.AuthorizedFor(claimedOwner) {
		return imagevault.Metadata{}, imagevault.ErrForbidden
	}

	if err := s.writeBlob(ctx, name, content); err != nil {
		return imagevault.Metadata{}, err
	}

	now := time.Now()
	if now.Before(meta.ModifiedAt) {
		now = meta.ModifiedAt
	}
	meta.ModifiedAt = now

	if err := s.writeSidecar(name, meta); err != nil {
		return imagevault.Metadata{}, err
	}

	return meta, nil
}

// Retrieve opens the blob for reading once the ownership check passes.
// The caller closes the returned reader. Reads take no lock: blobs are
// renamed into place, so an open observes either the old or the new
// content, never a partial write.
func (s *Store) Retrieve(ctx context.Context, name string, claimedOwner string) (io.ReadSeekCloser, imagevault.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, imagevault.Metadata{}, err
	}

	meta, err := s.loadPair(name)
	if err != nil {
		return nil, imagevault.Metadata{}, err
	}

	if !meta.AuthorizedFor(claimedOwner) {
		return nil, imagevault.Metadata{}, imagevault.ErrForbidden
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, imagevault.Metadata{}, imagevault.ErrNotFound
		}
		return nil, imagevault.Metadata{}, fmt.Errorf("open blob: %w", err)
	}

	return f, meta, nil
}

// Delete removes blob and sidecar. The blob goes first: if the process
// dies between the two removals, the dangling sidecar reads as not
// found and the next Create of the name overwrites it.
func (s *Store) Delete(ctx context.Context, name string, claimedOwner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := s.lockName(name)
	defer unlock()

	meta, err := s.loadPair(name)
	if err != nil {
		return err
	}

	if !meta.AuthorizedFor(claimedOwner) {
		return imagevault.ErrForbidden
	}

	if err := s.root.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}

	if err := s.root.Remove(imagevault.SidecarName(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove sidecar: %w", err)
	}

	return nil
}

// Enumerate rescans the directory and returns every object whose blob
// exists and whose sidecar decodes, in directory order. Entries with a
// missing half or an undecodable sidecar are skipped. Returns
// imagevault.ErrNotFound if the storage directory itself is gone.
func (s *Store) Enumerate(ctx context.Context) ([]imagevault.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, imagevault.ErrNotFound
		}
		return nil, fmt.Errorf("read storage directory: %w", err)
	}

	objects := make([]imagevault.StoredObject, 0, len(dirEntries)/2)
	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.IsDir() || !imagevault.IsObjectName(entry.Name()) {
			continue
		}

		meta, err := s.readSidecar(entry.Name())
		if err != nil {
			// Half-missing or unreadable pairs are absent from the
			// catalog, never an error for the whole listing.
			continue
		}

		objects = append(objects, imagevault.StoredObject{Name: entry.Name(), Metadata: meta})
	}

	return objects, nil
}

// SetOwner rewrites only the owner field of an object's sidecar. The
// blob and the modification time are untouched.
func (s *Store) SetOwner(ctx context.Context, name string, owner string) (imagevault.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return imagevault.Metadata{}, err
	}

	unlock := s.lockName(name)
	defer unlock()

	meta, err := s.loadPair(name)
	if err != nil {
		return imagevault.Metadata{}, err
	}

	meta.Owner = owner
	if err := s.writeSidecar(name, meta); err != nil {
		return imagevault.Metadata{}, err
	}

	return meta, nil
}

// loadPair checks the blob exists and decodes the sidecar. A missing
// half or an undecodable sidecar is imagevault.ErrNotFound.
func (s *Store) loadPair(name string) (imagevault.Metadata, error) {
	if _, err := s.root.Stat(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return imagevault.Metadata{}, imagevault.ErrNotFound
		}
		return imagevault.Metadata{}, fmt.Errorf("stat blob: %w", err)
	}

	meta, err := s.readSidecar(name)
	if err != nil {
		if errors.Is(err, imagevault.ErrDecode) {
			return imagevault.Metadata{}, fmt.Errorf("%w: %v", imagevault.ErrNotFound, err)
		}
		return imagevault.Metadata{}, err
	}

	return meta, nil
}

func (s *Store) readSidecar(name string) (imagevault.Metadata, error) {
	f, err := s.root.Open(imagevault.SidecarName(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return imagevault.Metadata{}, imagevault.ErrNotFound
		}
		return imagevault.Metadata{}, fmt.Errorf("open sidecar: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close sidecar", "name", name, "err", closeErr)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return imagevault.Metadata{}, fmt.Errorf("read sidecar: %w", err)
	}

	return imagevault.DecodeMetadata(data)
}

func (s *Store) writeSidecar(name string, meta imagevault.Metadata) error {
	data, err := imagevault.EncodeMetadata(meta)
	if err != nil {
		return fmt.Errorf("%w: %v", imagevault.ErrInternal, err)
	}
	return s.writeFile(imagevault.SidecarName(name), func(w io.Writer) error {
		_, writeErr := w.Write(data)
		return writeErr
	})
}

func (s *Store) writeBlob(ctx context.Context, name string, content io.Reader) error {
	return s.writeFile(name, func(w io.Writer) error {
		_, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
		return err
	})
}

// writeFile writes a file atomically through a temp file renamed into
// place.
func (s *Store) writeFile(name string, fill func(io.Writer) error) error {
	tmpFile := tmpFileName()
	t, err := s.root.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("could not open temp file: %w", err)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(t.Name()); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	if err := fill(t); err != nil {
		return fmt.Errorf("could not write file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return fmt.Errorf("could not sync written file: %w", err)
	}

	if err := s.root.Rename(tmpFile, name); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	success = true
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
