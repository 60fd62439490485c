package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sagarc03/imagevault"
)

// Service is the application boundary the handlers delegate to.
type Service interface {
	Create(ctx context.Context, fileName string, content io.Reader, owner string) (string, imagevault.Metadata, error)
	Retrieve(ctx context.Context, fileName string, claimedOwner string) (io.ReadSeekCloser, imagevault.Metadata, error)
	Replace(ctx context.Context, fileName string, content io.Reader, claimedOwner string) (imagevault.Metadata, error)
	Delete(ctx context.Context, fileName string, claimedOwner string) error
	Query(ctx context.Context, q imagevault.FilterQuery) ([]imagevault.CatalogEntry, error)
	Transfer(ctx context.Context, oldOwner, newOwner string) ([]imagevault.CatalogEntry, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// MaxUploadSize caps multipart request bodies in bytes. Zero means
	// no limit.
	MaxUploadSize int64
	CORS          CORSConfig
}

// Handler provides the HTTP handlers for the object store.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with all object routes configured.
// The static /objects/query and /objects/transfer routes take priority
// over the {name} parameter routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Route("/objects", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Post("/query", h.handleQuery)
		r.Get("/transfer", h.handleTransfer)
		r.Get("/{name}", h.handleRetrieve)
		r.Put("/{name}", h.handleReplace)
		r.Delete("/{name}", h.handleDelete)
	})

	return r
}

// formFile pulls the uploaded file out of a multipart request, applying
// the configured body size cap.
func (h *Handler) formFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, bool) {
	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Uploaded file exceeds the size limit")
			return nil, "", false
		}
		WriteError(w, http.StatusBadRequest, "no_file_selected", "No file selected")
		return nil, "", false
	}

	if header.Size == 0 {
		_ = file.Close()
		WriteError(w, http.StatusBadRequest, "no_file_selected", "No file selected")
		return nil, "", false
	}

	return file, header.Filename, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	file, fileName, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()

	owner := r.FormValue("owner")
	if owner == "" {
		WriteError(w, http.StatusBadRequest, "no_owner", "No owner assigned")
		return
	}

	name, meta, err := h.service.Create(r.Context(), fileName, file, owner)
	if err != nil {
		HandleError(w, err)
		return
	}

	url := "/objects/" + name
	w.Header().Set("Location", url)
	_ = WriteJSON(w, http.StatusCreated, CreateResponse{
		Name:      name,
		URL:       url,
		Owner:     meta.Owner,
		CreatedAt: meta.CreatedAt,
	})
}

func (h *Handler) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		WriteError(w, http.StatusBadRequest, "no_owner", "No owner assigned")
		return
	}

	content, meta, err := h.service.Retrieve(r.Context(), name, owner)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, name, meta.ModifiedAt, content)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	file, _, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()

	owner := r.FormValue("owner")
	if owner == "" {
		WriteError(w, http.StatusBadRequest, "no_owner", "No owner assigned")
		return
	}

	meta, err := h.service.Replace(r.Context(), name, file, owner)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ReplaceResponse{
		Name:       name,
		Owner:      meta.Owner,
		ModifiedAt: meta.ModifiedAt,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		WriteError(w, http.StatusBadRequest, "no_owner", "No owner assigned")
		return
	}

	if err := h.service.Delete(r.Context(), name, owner); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, DeleteResponse{Name: name, Deleted: true})
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	filterType, err := imagevault.ParseFilterType(r.FormValue("filterType"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_filter", "FilterType must be one of ByModificationDate, ByCreationDateAscending, ByCreationDateDescending, ByOwner")
		return
	}

	query := imagevault.FilterQuery{
		Type:  filterType,
		Owner: r.FormValue("owner"),
	}

	if query.CreationDate, err = parseDateField(r.FormValue("creationDate")); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_date", "creationDate must be RFC 3339")
		return
	}
	if query.ModificationDate, err = parseDateField(r.FormValue("modificationDate")); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_date", "modificationDate must be RFC 3339")
		return
	}

	entries, err := h.service.Query(r.Context(), query)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	oldOwner := r.URL.Query().Get("oldOwner")
	newOwner := r.URL.Query().Get("newOwner")
	if oldOwner == "" || newOwner == "" {
		WriteError(w, http.StatusBadRequest, "no_owner", "OldOwner and NewOwner must be provided")
		return
	}

	entries, err := h.service.Transfer(r.Context(), oldOwner, newOwner)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, entries)
}

// parseDateField parses an optional RFC 3339 form field. An absent
// field is nil, not an error; the date filters treat it as no match.
func parseDateField(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
