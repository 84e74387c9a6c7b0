// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/logger"
	"github.com/vibing/vibing-client/internal/utils"
)

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// FilePart is one file field of a multipart upload.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Reader      io.Reader
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logrus.Entry

	mu        sync.RWMutex
	tokens    TokenSource
	onExpired func()

	Auth     *AuthService
	Products *ProductService
	Purchase *PurchaseService
	Payments *PaymentService
	Chat     *ChatService
	Reviews  *ReviewService
	Upload   *UploadService
	Admin    *AdminService
	Seller   *SellerService
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.log = l.WithField("component", "api") }
}

func NewClient(cfg config.APIConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		limiter:    rate.NewLimiter(limit, burst),
		log:        logrus.WithField("component", "api"),
		tokens:     TokenFunc(func() string { return "" }),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Products = &ProductService{c: c}
	c.Purchase = &PurchaseService{c: c}
	c.Payments = &PaymentService{c: c}
	c.Chat = &ChatService{c: c}
	c.Reviews = &ReviewService{c: c}
	c.Upload = &UploadService{c: c}
	c.Admin = &AdminService{c: c}
	c.Seller = &SellerService{c: c}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnSessionExpired registers the handler run when an authenticated call
// comes back 401.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// RequireToken fails with ErrAuthRequired when no token is stored.
func (c *Client) RequireToken() error {
	if c.token() == "" {
		return ErrAuthRequired
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.send(ctx, method, path, query, reader, "application/json", out)
}

// PostMultipart sends fields and files as multipart/form-data. The body is
// streamed, so file parts are never held in memory whole.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FilePart, out interface{}) error {
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	contentType := w.FormDataContentType()

	written := make(chan error, 1)
	go func() {
		err := writeMultipart(w, fields, files)
		pw.CloseWithError(err)
		written <- err
	}()

	err := c.send(ctx, http.MethodPost, path, nil, pr, contentType, out)
	// Unblocks the writer when the request ended before the body was read.
	pr.Close()
	if werr := <-written; werr != nil && !errors.Is(werr, io.ErrClosedPipe) {
		return werr
	}
	return err
}

func writeMultipart(w *multipart.Writer, fields map[string]string, files []FilePart) error {
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := createFilePart(w, f)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return fmt.Errorf("failed to write file %s: %w", f.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}
	return nil
}

func createFilePart(w *multipart.Writer, f FilePart) (io.Writer, error) {
	if f.ContentType == "" {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		return part, nil
	}
	h := make(textproto.MIMEHeader)
	h["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Filename)),
	}
	h["Content-Type"] = []string{f.ContentType}
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	return part, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := utils.NewRequestID()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method":     method,
			"path":       path,
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("API request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"duration":   time.Since(start),
		"request_id": requestID,
		"token":      logger.TokenPrefix(token),
	}).Debug("API request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleError(resp.StatusCode, token != "", data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) handleError(status int, authenticated bool, body []byte) error {
	code, message := utils.ParseErrorBody(body)
	apiErr := &APIError{Status: status, Code: code, Message: message}

	// A 401 only means the session ended when a token was actually sent.
	if status == http.StatusUnauthorized && authenticated {
		apiErr.Err = ErrSessionExpired
		c.mu.RLock()
		handler := c.onExpired
		c.mu.RUnlock()
		if handler != nil {
			handler()
		}
	}
	return apiErr
}

// PutRaw uploads body to an absolute URL, such as a presigned upload URL.
// No bearer token is attached.
func (c *Client) PutRaw(ctx context.Context, rawURL, contentType string, body io.Reader, size int64) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rawURL, body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if size > 0 {
		req.ContentLength = size
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: utils.MessageRequestFailed}
	}
	return nil
}

// Fetch GETs an absolute URL and returns the open response body. The caller
// closes it.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	// Download URLs on the API host need the bearer token.
	if strings.HasPrefix(rawURL, c.baseURL) {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		_, message := utils.ParseErrorBody(data)
		return nil, &APIError{Status: resp.StatusCode, Message: message}
	}
	return resp.Body, nil
}
