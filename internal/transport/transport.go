// Package transport is the authenticated HTTP layer for the data
// endpoints. Every request carries the client identifier, a bearer access
// token, and the API version header; a 401 triggers exactly one token
// refresh followed by one retry of the original request.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lunarhue/anylist/internal/errs"
	"github.com/lunarhue/anylist/internal/session"
)

// OperationsField is the multipart form field carrying the encoded
// operation-list envelope.
const OperationsField = "operations"

// Config collects the transport's dependencies.
type Config struct {
	BaseURL string
	HTTP    *http.Client
	Session *session.Manager
	Logger  *zap.Logger
}

// Client posts to the service's data endpoints.
type Client struct {
	base    string
	http    *http.Client
	session *session.Manager
	log     *zap.Logger
}

// New builds a transport client.
func New(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	httpc := cfg.HTTP
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpc,
		session: cfg.Session,
		log:     log,
	}
}

// Fetch POSTs to endpoint with an empty body and returns the raw response
// bytes (data endpoints answer with encoded snapshots, not JSON).
func (c *Client) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, endpoint, func() (io.Reader, string) {
		return nil, ""
	})
}

// PostOperations transmits one encoded operation batch as the multipart
// "operations" field.
func (c *Client) PostOperations(ctx context.Context, endpoint string, operations []byte) error {
	_, err := c.do(ctx, endpoint, func() (io.Reader, string) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		field, err := w.CreateFormField(OperationsField)
		if err == nil {
			_, err = field.Write(operations)
		}
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			// multipart writing to a buffer cannot fail in practice
			panic(err)
		}
		return &buf, w.FormDataContentType()
	})
	return err
}

// do runs one authenticated request. The body factory is invoked per
// attempt so the 401 retry gets a fresh reader.
func (c *Client) do(ctx context.Context, endpoint string, body func() (io.Reader, string)) ([]byte, error) {
	token, gen := c.session.AccessToken()
	if token == "" {
		return nil, errs.ErrNotAuthenticated
	}

	resp, err := c.attempt(ctx, endpoint, token, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.log.Info("endpoint returned status code 401, refreshing access token before retrying",
			zap.String("endpoint", endpoint))
		if err := c.session.RefreshForGeneration(ctx, gen); err != nil {
			return nil, err
		}
		token, _ = c.session.AccessToken()
		resp, err = c.attempt(ctx, endpoint, token, body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return nil, &errs.AuthError{Endpoint: endpoint, Status: http.StatusUnauthorized}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("endpoint returned uncaught status code",
			zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
		return nil, &errs.StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return data, nil
}

func (c *Client) attempt(ctx context.Context, endpoint, token string, body func() (io.Reader, string)) (*http.Response, error) {
	reader, contentType := body()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-AnyLeaf-Client-Identifier", c.session.ClientID())
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-AnyLeaf-API-Version", session.APIVersion)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	return resp, nil
}
