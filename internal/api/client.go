package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"

	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/query"
)

// ErrUnreachable wraps transport failures talking to the search backend.
var ErrUnreachable = errors.New("search backend unreachable")

// anonymousToken is sent when no token is configured; the REST client
// refuses to start without one.
const anonymousToken = "anonymous"

type Options struct {
	ServerURL string
	Token     string
	Timeout   time.Duration
	Transport http.RoundTripper
	// Log receives a trace of every request when set.
	Log io.Writer
}

type Client struct {
	rest *ghAPI.RESTClient
	base string
}

func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(opts.ServerURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", opts.ServerURL)
	}
	token := opts.Token
	if token == "" {
		token = anonymousToken
	}

	rest, err := ghAPI.NewRESTClient(ghAPI.ClientOptions{
		Host:         u.Hostname(),
		AuthToken:    token,
		Timeout:      opts.Timeout,
		Transport:    opts.Transport,
		Log:          opts.Log,
		LogIgnoreEnv: opts.Log == nil,
		Headers:      map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	return &Client{rest: rest, base: u.String()}, nil
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
			if seg != "" {
				escaped = append(escaped, url.PathEscape(seg))
			}
		}
	}
	return c.base + "/" + strings.Join(escaped, "/")
}

type submitRequest struct {
	Path      string            `json:"path"`
	Operation string            `json:"operation"`
	Options   map[string]string `json:"options"`
}

type submitResponse struct {
	Job string `json:"job"`
}

// Submit starts a search job and returns its handle. No handle is returned
// on error, so the caller never starts polling a job it does not own.
func (c *Client) Submit(ctx context.Context, d model.QueryDescriptor) (model.JobHandle, error) {
	body, err := json.Marshal(submitRequest{
		Path:      d.ScopePath,
		Operation: query.Operation,
		Options:   query.Options(d),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	var resp submitResponse
	if err := c.rest.DoWithContext(ctx, http.MethodPost, c.endpoint("api", query.Operation), bytes.NewReader(body), &resp); err != nil {
		return "", wrap("submit search", err)
	}
	if resp.Job == "" {
		return "", fmt.Errorf("submit search: backend returned no job handle")
	}
	return model.JobHandle(resp.Job), nil
}

// Poll fetches the job output starting at offset.
func (c *Client) Poll(ctx context.Context, h model.JobHandle, offset int) (model.PollResult, error) {
	u := c.endpoint("api", query.Operation, string(h)) + "?offset=" + strconv.Itoa(offset)
	var res model.PollResult
	if err := c.rest.DoWithContext(ctx, http.MethodGet, u, nil, &res); err != nil {
		return model.PollResult{}, wrap("poll search", err)
	}
	return res, nil
}

// Cancel stops a job on the backend. A job the backend no longer knows
// about is already gone and is not an error.
func (c *Client) Cancel(ctx context.Context, h model.JobHandle) error {
	err := c.rest.DoWithContext(ctx, http.MethodDelete, c.endpoint("api", query.Operation, string(h)), nil, nil)
	if err != nil && !IsNotFound(err) {
		return wrap("cancel search", err)
	}
	return nil
}

// ReadFile downloads a project file, addressed the same way as a search
// scope.
func (c *Client) ReadFile(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.rest.RequestWithContext(ctx, http.MethodGet, c.endpoint("api", "fs", path), nil)
	if err != nil {
		return nil, wrap("read "+path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var httpErr *ghAPI.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

func wrap(op string, err error) error {
	var httpErr *ghAPI.HTTPError
	if errors.As(err, &httpErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnreachable, err)
}
