package clientcli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs operations against an imagevault server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
			Owner:    cfg.Owner,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// owner resolves the effective owner for a request: the explicit one if
// set, the configured one otherwise.
func (c *Client) owner(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if c.config.Owner != "" {
		return c.config.Owner, nil
	}
	return "", ErrOwnerRequired
}

// Upload sends a local file to the server. With Replace set it issues a
// PUT on the existing object; otherwise it creates a new one.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (UploadResult, error) {
	if opts.LocalPath == "" {
		return UploadResult{}, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	owner, err := c.owner(opts.Owner)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	remoteName := opts.RemoteName
	if remoteName == "" {
		remoteName = filepath.Base(opts.LocalPath)
	}

	f, err := os.Open(filepath.Clean(opts.LocalPath))
	if err != nil {
		return UploadResult{}, fmt.Errorf("open local file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var (
		method   string
		endpoint string
	)
	if opts.Replace {
		method = http.MethodPut
		endpoint = c.config.Endpoint + "/objects/" + url.PathEscape(remoteName)
	} else {
		method = http.MethodPost
		endpoint = c.config.Endpoint + "/objects"
	}

	body, contentType, err := multipartBody(remoteName, owner, f)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if opts.Replace {
		if resp.StatusCode != http.StatusOK {
			return UploadResult{}, decodeAPIError(resp)
		}
		var sr serverReplaceResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			return UploadResult{}, fmt.Errorf("decode response: %w", err)
		}
		return UploadResult{
			LocalPath:  opts.LocalPath,
			Name:       sr.Name,
			Owner:      sr.Owner,
			ModifiedAt: sr.ModifiedAt,
			Replaced:   true,
		}, nil
	}

	if resp.StatusCode != http.StatusCreated {
		return UploadResult{}, decodeAPIError(resp)
	}
	var sc serverCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&sc); err != nil {
		return UploadResult{}, fmt.Errorf("decode response: %w", err)
	}
	return UploadResult{
		LocalPath:  opts.LocalPath,
		Name:       sc.Name,
		URL:        sc.URL,
		Owner:      sc.Owner,
		ModifiedAt: sc.CreatedAt,
	}, nil
}

// Download fetches an object. When LocalPath is "-" the content reader
// is returned for the caller to consume; otherwise the content is
// written to LocalPath and a nil reader is returned.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (DownloadResult, io.ReadCloser, error) {
	if opts.RemoteName == "" {
		return DownloadResult{}, nil, fmt.Errorf("download: %w", ErrEmptyName)
	}

	owner, err := c.owner(opts.Owner)
	if err != nil {
		return DownloadResult{}, nil, fmt.Errorf("download: %w", err)
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = filepath.Base(opts.RemoteName)
	}

	endpoint := c.config.Endpoint + "/objects/" + url.PathEscape(opts.RemoteName) + "?owner=" + url.QueryEscape(owner)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return DownloadResult{}, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DownloadResult{}, nil, fmt.Errorf("download: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return DownloadResult{}, nil, decodeAPIError(resp)
	}

	result := DownloadResult{
		RemoteName: opts.RemoteName,
		LocalPath:  localPath,
		Size:       resp.ContentLength,
	}

	if localPath == "-" {
		return result, resp.Body, nil
	}

	defer func() { _ = resp.Body.Close() }()

	out, err := os.Create(filepath.Clean(localPath))
	if err != nil {
		return DownloadResult{}, nil, fmt.Errorf("create local file: %w", err)
	}

	n, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		return DownloadResult{}, nil, fmt.Errorf("write local file: %w", copyErr)
	}
	if closeErr != nil {
		return DownloadResult{}, nil, fmt.Errorf("close local file: %w", closeErr)
	}

	result.Size = n
	return result, nil, nil
}

// Delete removes objects by name. A per-name failure is recorded in the
// result rather than aborting the batch.
func (c *Client) Delete(ctx context.Context, names []string, owner string) ([]DeleteResult, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("delete: %w", ErrEmptyName)
	}

	effOwner, err := c.owner(owner)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}

	results := make([]DeleteResult, 0, len(names))
	for _, name := range names {
		endpoint := c.config.Endpoint + "/objects/" + url.PathEscape(name) + "?owner=" + url.QueryEscape(effOwner)

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, http.NoBody)
		if reqErr != nil {
			results = append(results, DeleteResult{Name: name, Err: reqErr})
			continue
		}

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			results = append(results, DeleteResult{Name: name, Err: doErr})
			continue
		}

		if resp.StatusCode != http.StatusOK {
			results = append(results, DeleteResult{Name: name, Err: decodeAPIError(resp)})
			_ = resp.Body.Close()
			continue
		}
		_ = resp.Body.Close()

		results = append(results, DeleteResult{Name: name, Deleted: true})
	}

	return results, nil
}

// Query runs a catalog query and returns the matching name/owner pairs
// in server order.
func (c *Client) Query(ctx context.Context, opts QueryOptions) ([]CatalogEntry, error) {
	form := url.Values{}
	form.Set("filterType", opts.FilterType)
	if opts.CreationDate != "" {
		form.Set("creationDate", opts.CreationDate)
	}
	if opts.ModificationDate != "" {
		form.Set("modificationDate", opts.ModificationDate)
	}
	if opts.Owner != "" {
		form.Set("owner", opts.Owner)
	}

	endpoint := c.config.Endpoint + "/objects/query"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var entries []CatalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return entries, nil
}

// Transfer rewrites ownership of every object held by OldOwner to
// NewOwner and returns NewOwner's holdings, including objects it
// already held before the call.
func (c *Client) Transfer(ctx context.Context, opts TransferOptions) ([]CatalogEntry, error) {
	if opts.OldOwner == "" || opts.NewOwner == "" {
		return nil, fmt.Errorf("transfer: %w", ErrOwnerRequired)
	}

	endpoint := c.config.Endpoint + "/objects/transfer?oldOwner=" + url.QueryEscape(opts.OldOwner) + "&newOwner=" + url.QueryEscape(opts.NewOwner)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var entries []CatalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return entries, nil
}

// multipartBody builds an in-memory multipart form with the file part
// and the owner field.
func multipartBody(fileName, owner string, content io.Reader) (io.Reader, string, error) {
	var buf strings.Builder
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", fmt.Errorf("copy file contents: %w", err)
	}

	if err := w.WriteField("owner", owner); err != nil {
		return nil, "", fmt.Errorf("write owner field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return strings.NewReader(buf.String()), w.FormDataContentType(), nil
}

// decodeAPIError turns a non-2xx response into an *APIError, keeping
// the server's machine-readable code when the body decodes.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown"}
	_ = json.NewDecoder(resp.Body).Decode(apiErr)
	return apiErr
}
