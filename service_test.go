package imagevault_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sagarc03/imagevault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type SpyObjectStore struct {
	mock.Mock
}

func (s *SpyObjectStore) Create(ctx context.Context, name string, content io.Reader, owner string) (imagevault.Metadata, error) {
	args := s.Called(ctx, name, content, owner)
	return args.Get(0).(imagevault.Metadata), args.Error(1)
}

func (s *SpyObjectStore) Replace(ctx context.Context, name string, content io.Reader, claimedOwner string) (imagevault.Metadata, error) {
	args := s.Called(ctx, name, content, claimedOwner)
	return args.Get(0).(imagevault.Metadata), args.Error(1)
}

func (s *SpyObjectStore) Retrieve(ctx context.Context, name string, claimedOwner string) (io.ReadSeekCloser, imagevault.Metadata, error) {
	args := s.Called(ctx, name, claimedOwner)
	var rc io.ReadSeekCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadSeekCloser)
	}
	return rc, args.Get(1).(imagevault.Metadata), args.Error(2)
}

func (s *SpyObjectStore) Delete(ctx context.Context, name string, claimedOwner string) error {
	args := s.Called(ctx, name, claimedOwner)
	return args.Error(0)
}

func (s *SpyObjectStore) Enumerate(ctx context.Context) ([]imagevault.StoredObject, error) {
	args := s.Called(ctx)
	var objs []imagevault.StoredObject
	if v := args.Get(0); v != nil {
		objs = v.([]imagevault.StoredObject)
	}
	return objs, args.Error(1)
}

func (s *SpyObjectStore) SetOwner(ctx context.Context, name string, owner string) (imagevault.Metadata, error) {
	args := s.Called(ctx, name, owner)
	return args.Get(0).(imagevault.Metadata), args.Error(1)
}

type nopReadSeekCloser struct {
	*bytes.Reader
}

func (nopReadSeekCloser) Close() error { return nil }

func NewService(t *testing.T) (*imagevault.Service, *SpyObjectStore) {
	t.Helper()
	spy := new(SpyObjectStore)
	s, err := imagevault.NewService(spy)
	assert.NoError(t, err, "new service")
	return s, spy
}

func TestNewService_NilStore(t *testing.T) {
	s, err := imagevault.NewService(nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		content := bytes.NewReader([]byte("image bytes"))

		want := imagevault.Metadata{Owner: "alice", CreatedAt: time.Now(), ModifiedAt: time.Now()}
		store.On("Create", ctx, "photo.jpg", content, "alice").Return(want, nil)

		name, meta, err := service.Create(ctx, "photo.jpg", content, "alice")
		assert.NoError(t, err)
		assert.Equal(t, "photo.jpg", name)
		assert.Equal(t, want, meta)

		store.AssertExpectations(t)
	})

	t.Run("canonicalizes extension case", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		content := bytes.NewReader(nil)

		store.On("Create", ctx, "photo.jpeg", content, "alice").Return(imagevault.Metadata{Owner: "alice"}, nil)

		name, _, err := service.Create(ctx, "photo.JPEG", content, "alice")
		assert.NoError(t, err)
		assert.Equal(t, "photo.jpeg", name)

		store.AssertExpectations(t)
	})

	t.Run("no owner", func(t *testing.T) {
		service, store := NewService(t)

		_, _, err := service.Create(context.Background(), "photo.jpg", bytes.NewReader(nil), "")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrInvalidInput)

		store.AssertNotCalled(t, "Create")
	})

	t.Run("invalid extension", func(t *testing.T) {
		service, store := NewService(t)

		_, _, err := service.Create(context.Background(), "photo.png", bytes.NewReader(nil), "alice")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrInvalidExtension)

		store.AssertNotCalled(t, "Create")
	})

	t.Run("conflict passes through", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		content := bytes.NewReader(nil)

		store.On("Create", ctx, "photo.jpg", content, "alice").Return(imagevault.Metadata{}, imagevault.ErrConflict)

		_, _, err := service.Create(ctx, "photo.jpg", content, "alice")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrConflict)
	})

	t.Run("context canceled", func(t *testing.T) {
		service, store := NewService(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := service.Create(ctx, "photo.jpg", bytes.NewReader(nil), "alice")
		assert.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)

		store.AssertNotCalled(t, "Create")
	})
}

func TestService_Retrieve(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()

		blob := nopReadSeekCloser{bytes.NewReader([]byte("image bytes"))}
		meta := imagevault.Metadata{Owner: "alice"}
		store.On("Retrieve", ctx, "photo.jpg", "alice").Return(blob, meta, nil)

		content, got, err := service.Retrieve(ctx, "photo.jpg", "alice")
		assert.NoError(t, err)
		assert.Equal(t, meta, got)

		data, err := io.ReadAll(content)
		assert.NoError(t, err)
		assert.Equal(t, []byte("image bytes"), data)
		assert.NoError(t, content.Close())
	})

	t.Run("forbidden passes through", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()

		store.On("Retrieve", ctx, "photo.jpg", "bob").Return(nil, imagevault.Metadata{}, imagevault.ErrForbidden)

		_, _, err := service.Retrieve(ctx, "photo.jpg", "bob")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrForbidden)
	})

	t.Run("no owner", func(t *testing.T) {
		service, store := NewService(t)

		_, _, err := service.Retrieve(context.Background(), "photo.jpg", "")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrInvalidInput)

		store.AssertNotCalled(t, "Retrieve")
	})
}

func TestService_Replace(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		content := bytes.NewReader([]byte("new bytes"))

		want := imagevault.Metadata{Owner: "alice"}
		store.On("Replace", ctx, "photo.jpg", content, "alice").Return(want, nil)

		meta, err := service.Replace(ctx, "photo.jpg", content, "alice")
		assert.NoError(t, err)
		assert.Equal(t, want, meta)
	})

	t.Run("not found passes through", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		content := bytes.NewReader(nil)

		store.On("Replace", ctx, "photo.jpg", content, "alice").Return(imagevault.Metadata{}, imagevault.ErrNotFound)

		_, err := service.Replace(ctx, "photo.jpg", content, "alice")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrNotFound)
	})

	t.Run("invalid name", func(t *testing.T) {
		service, store := NewService(t)

		_, err := service.Replace(context.Background(), "../photo.jpg", bytes.NewReader(nil), "alice")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrInvalidName)

		store.AssertNotCalled(t, "Replace")
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()

		store.On("Delete", ctx, "photo.jpg", "alice").Return(nil)

		err := service.Delete(ctx, "photo.jpg", "alice")
		assert.NoError(t, err)

		store.AssertExpectations(t)
	})

	t.Run("forbidden passes through", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()

		store.On("Delete", ctx, "photo.jpg", "bob").Return(imagevault.ErrForbidden)

		err := service.Delete(ctx, "photo.jpg", "bob")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrForbidden)
	})

	t.Run("no owner", func(t *testing.T) {
		service, store := NewService(t)

		err := service.Delete(context.Background(), "photo.jpg", "")
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrInvalidInput)

		store.AssertNotCalled(t, "Delete")
	})
}

func queryFixtures() []imagevault.StoredObject {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []imagevault.StoredObject{
		{Name: "c.jpg", Metadata: imagevault.Metadata{Owner: "alice", CreatedAt: base.Add(48 * time.Hour), ModifiedAt: base.Add(72 * time.Hour)}},
		{Name: "a.jpg", Metadata: imagevault.Metadata{Owner: "alice", CreatedAt: base, ModifiedAt: base}},
		{Name: "b.jpg", Metadata: imagevault.Metadata{Owner: "bob", CreatedAt: base.Add(24 * time.Hour), ModifiedAt: base.Add(24 * time.Hour)}},
	}
}

func TestService_Query(t *testing.T) {
	t.Run("invalid filter type", func(t *testing.T) {
		service, store := NewService(t)

		_, err := service.Query(context.Background(), imagevault.FilterQuery{Type: "Bogus"})
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrInvalidFilter)

		store.AssertNotCalled(t, "Enumerate")
	})

	t.Run("by modification date", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		store.On("Enumerate", ctx).Return(queryFixtures(), nil)

		cutoff := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
		entries, err := service.Query(ctx, imagevault.FilterQuery{
			Type:             imagevault.FilterByModificationDate,
			ModificationDate: &cutoff,
		})
		assert.NoError(t, err)
		assert.Equal(t, []imagevault.CatalogEntry{
			{Name: "a.jpg", Owner: "alice"},
			{Name: "b.jpg", Owner: "bob"},
		}, entries)
	})

	t.Run("by modification date without parameter", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		store.On("Enumerate", ctx).Return(queryFixtures(), nil)

		entries, err := service.Query(ctx, imagevault.FilterQuery{Type: imagevault.FilterByModificationDate})
		assert.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("by creation date ascending", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		store.On("Enumerate", ctx).Return(queryFixtures(), nil)

		cutoff := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		entries, err := service.Query(ctx, imagevault.FilterQuery{
			Type:         imagevault.FilterByCreationDateAscending,
			CreationDate: &cutoff,
		})
		assert.NoError(t, err)
		assert.Equal(t, []imagevault.CatalogEntry{
			{Name: "a.jpg", Owner: "alice"},
			{Name: "b.jpg", Owner: "bob"},
			{Name: "c.jpg", Owner: "alice"},
		}, entries)
	})

	t.Run("by creation date descending", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		store.On("Enumerate", ctx).Return(queryFixtures(), nil)

		cutoff := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		entries, err := service.Query(ctx, imagevault.FilterQuery{
			Type:         imagevault.FilterByCreationDateDescending,
			CreationDate: &cutoff,
		})
		assert.NoError(t, err)
		assert.Equal(t, []imagevault.CatalogEntry{
			{Name: "c.jpg", Owner: "alice"},
			{Name: "b.jpg", Owner: "bob"},
		}, entries)
	})

	t.Run("by owner", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		store.On("Enumerate", ctx).Return(queryFixtures(), nil)

		entries, err := service.Query(ctx, imagevault.FilterQuery{
			Type:  imagevault.FilterByOwner,
			Owner: "alice",
		})
		assert.NoError(t, err)
		assert.Equal(t, []imagevault.CatalogEntry{
			{Name: "c.jpg", Owner: "alice"},
			{Name: "a.jpg", Owner: "alice"},
		}, entries)
	})

	t.Run("by owner without parameter", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		store.On("Enumerate", ctx).Return(queryFixtures(), nil)

		entries, err := service.Query(ctx, imagevault.FilterQuery{Type: imagevault.FilterByOwner})
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("enumerate error", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()
		store.On("Enumerate", ctx).Return(nil, imagevault.ErrNotFound)

		_, err := service.Query(ctx, imagevault.FilterQuery{Type: imagevault.FilterByOwner, Owner: "alice"})
		assert.Error(t, err)
		assert.ErrorIs(t, err, imagevault.ErrNotFound)
	})
}

func TestService_Transfer(t *testing.T) {
	t.Run("rewrites and reports full holdings", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()

		objects := []imagevault.StoredObject{
			{Name: "a.jpg", Metadata: imagevault.Metadata{Owner: "alice"}},
			{Name: "b.jpg", Metadata: imagevault.Metadata{Owner: "bob"}},
			{Name: "c.jpg", Metadata: imagevault.Metadata{Owner: "carol"}},
		}
		store.On("Enumerate", ctx).Return(objects, nil)
		store.On("SetOwner", ctx, "a.jpg", "bob").Return(imagevault.Metadata{Owner: "bob"}, nil)

		entries, err := service.Transfer(ctx, "alice", "bob")
		assert.NoError(t, err)

		// The result is bob's complete holdings after the rewrite, so it
		// includes b.jpg even though b.jpg was never alice's.
		assert.Equal(t, []imagevault.CatalogEntry{
			{Name: "a.jpg", Owner: "bob"},
			{Name: "b.jpg", Owner: "bob"},
		}, entries)

		store.AssertExpectations(t)
		store.AssertNotCalled(t, "SetOwner", ctx, "b.jpg", mock.Anything)
		store.AssertNotCalled(t, "SetOwner", ctx, "c.jpg", mock.Anything)
	})

	t.Run("nothing owned by old owner", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()

		objects := []imagevault.StoredObject{
			{Name: "b.jpg", Metadata: imagevault.Metadata{Owner: "bob"}},
		}
		store.On("Enumerate", ctx).Return(objects, nil)

		entries, err := service.Transfer(ctx, "alice", "bob")
		assert.NoError(t, err)
		assert.Equal(t, []imagevault.CatalogEntry{{Name: "b.jpg", Owner: "bob"}}, entries)

		store.AssertNotCalled(t, "SetOwner")
	})

	t.Run("object deleted mid transfer is skipped", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()

		objects := []imagevault.StoredObject{
			{Name: "a.jpg", Metadata: imagevault.Metadata{Owner: "alice"}},
			{Name: "z.jpg", Metadata: imagevault.Metadata{Owner: "alice"}},
		}
		store.On("Enumerate", ctx).Return(objects, nil)
		store.On("SetOwner", ctx, "a.jpg", "bob").Return(imagevault.Metadata{}, imagevault.ErrNotFound)
		store.On("SetOwner", ctx, "z.jpg", "bob").Return(imagevault.Metadata{Owner: "bob"}, nil)

		entries, err := service.Transfer(ctx, "alice", "bob")
		assert.NoError(t, err)
		assert.Equal(t, []imagevault.CatalogEntry{{Name: "z.jpg", Owner: "bob"}}, entries)
	})

	t.Run("set owner failure aborts", func(t *testing.T) {
		service, store := NewService(t)
		ctx := context.Background()

		objects := []imagevault.StoredObject{
			{Name: "a.jpg", Metadata: imagevault.Metadata{Owner: "alice"}},
		}
		store.On("Enumerate", ctx).Return(objects, nil)
		store.On("SetOwner", ctx, "a.jpg", "bob").Return(imagevault.Metadata{}, errors.New("disk full"))

		_, err := service.Transfer(ctx, "alice", "bob")
		assert.Error(t, err)
	})

	t.Run("missing owners", func(t *testing.T) {
		service, store := NewService(t)

		_, err := service.Transfer(context.Background(), "", "bob")
		assert.ErrorIs(t, err, imagevault.ErrInvalidInput)

		_, err = service.Transfer(context.Background(), "alice", "")
		assert.ErrorIs(t, err, imagevault.ErrInvalidInput)

		store.AssertNotCalled(t, "Enumerate")
	})
}
