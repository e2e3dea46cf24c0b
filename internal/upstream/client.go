// Package upstream is the portal's client for the enrollment API. Every
// screen talks to the API through it; cross-cutting failures (expired
// sessions, forbidden actions, rate limits, transport errors) are translated
// here so screens only deal with their own error cases.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/dbtc-edu/enrollment-portal/pkg/errors"
)

// Observer records upstream call outcomes. Implemented by internal/metrics.
type Observer interface {
	ObserveUpstream(method, group string, status int, duration time.Duration)
}

// Client wraps HTTP access to the enrollment API.
type Client struct {
	base     string
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// New constructs a Client. baseURL must not end with a slash.
func New(baseURL string, timeout time.Duration, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
		observer: observer,
	}
}

// FileURL resolves an uploaded-document path (as stored on a student record)
// against the enrollment service, so templates can render the file directly.
func (c *Client) FileURL(path string) string {
	if path == "" {
		return ""
	}
	return c.base + "/" + strings.TrimLeft(path, "/")
}

type request struct {
	method string
	path   string
	group  string
	token  string
	query  url.Values
	body   io.Reader
	cType  string
	// authEndpoint marks /auth/* calls: their 401s are credential failures,
	// not expired sessions, and never force a logout.
	authEndpoint bool
}

// errorPayload is the upstream's structured error body. FastAPI-style: a
// string detail, or a list of field errors.
type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Msg string `json:"msg"`
}

// extractMessage pulls a human-readable message out of an error body,
// falling back to the given default.
func extractMessage(body []byte, fallback string) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
		return s
	}

	var fields []fieldError
	if err := json.Unmarshal(payload.Detail, &fields); err == nil && len(fields) > 0 {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg != "" {
				msgs = append(msgs, f.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, ", ")
		}
	}

	return fallback
}

// do executes a request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	body, _, err := c.doRaw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "unexpected response from enrollment service")
	}
	return nil
}

// doRaw executes a request and returns the raw body plus content type.
func (c *Client) doRaw(ctx context.Context, req request) ([]byte, string, error) {
	target := c.base + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	if req.cType != "" {
		httpReq.Header.Set("Content-Type", req.cType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req, 0, time.Since(start))
		c.logger.Warn("upstream unreachable",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
		return nil, "", appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.observe(req, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, resp.Header.Get("Content-Type"), nil
	}

	return nil, "", c.translate(req, resp.StatusCode, raw)
}

// translate maps an upstream error status to the portal's error taxonomy.
func (c *Client) translate(req request, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		if req.authEndpoint {
			return appErrors.Clone(appErrors.ErrUnauthorized, extractMessage(body, "invalid email or password"))
		}
		return appErrors.Clone(appErrors.ErrSessionExpired, "")
	case http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrAccessDenied, "")
	case http.StatusTooManyRequests:
		return appErrors.Clone(appErrors.ErrRateLimited, "")
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, extractMessage(body, appErrors.ErrNotFound.Message))
	case http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, extractMessage(body, appErrors.ErrConflict.Message))
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErrors.Clone(appErrors.ErrValidation, extractMessage(body, appErrors.ErrValidation.Message))
	}
	fallback := fmt.Sprintf("enrollment service error (%d)", status)
	return appErrors.New(appErrors.ErrInternal.Code, status, extractMessage(body, fallback))
}

func (c *Client) observe(req request, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(req.method, req.group, status, duration)
	}
}

func (c *Client) getJSON(ctx context.Context, token, group, path string, query url.Values, out interface{}) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, group: group, token: token, query: query}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, token, group, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, request{method: method, path: path, group: group, token: token, body: body, cType: "application/json"}, out)
}

// jsonBody encodes a payload for requests built inline. Marshal failures for
// the plain structs used here cannot happen; an empty body is the safe out.
func jsonBody(in interface{}) io.Reader {
	raw, err := json.Marshal(in)
	if err != nil {
		return bytes.NewReader(nil)
	}
	return bytes.NewReader(raw)
}

// uploadFile posts a single multipart file under the field name "file".
func (c *Client) uploadFile(ctx context.Context, token, group, path, filename string, file io.Reader, out interface{}) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upload")
	}
	if _, err := io.Copy(part, file); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	if err := writer.Close(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalise upload")
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		group:  group,
		token:  token,
		body:   buf,
		cType:  writer.FormDataContentType(),
	}, out)
}
