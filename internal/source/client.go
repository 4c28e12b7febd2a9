// Package source is the client for the spreadsheet-backed data endpoints.
// Each endpoint returns a JSON array of flat records, either bare or wrapped
// under a page-specific key.
package source

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/tidwall/gjson"

	"github.com/pable/go-match-stats/internal/model"
)

var (
	// ErrMalformedResponse means the body was not JSON or held no record array.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrSourceFailure means the endpoint answered with success=false or an error field.
	ErrSourceFailure = errors.New("source reported failure")
)

// WrapperKeys are the object keys tried, in order, when a response is wrapped.
var WrapperKeys = []string{"matches", "records", "data"}

// Client is a minimal client for the data endpoints.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient returns a client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "matchstats/1.0",
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

// Feed binds the client to one endpoint.
type Feed struct {
	client  *Client
	path    string
	wrapper string
}

// Feed returns a fetcher for path. wrapper names the expected wrapping key;
// empty means any of WrapperKeys or a bare array.
func (c *Client) Feed(path, wrapper string) *Feed {
	return &Feed{client: c, path: path, wrapper: wrapper}
}

// Fetch loads the endpoint's records. force asks the backend to bypass its own
// cache with force_refresh=true.
func (f *Feed) Fetch(ctx context.Context, force bool) ([]model.Record, error) {
	body, err := f.client.get(ctx, f.path, force)
	if err != nil {
		return nil, err
	}
	return Decode(body, f.wrapper)
}

// URL is the resolved endpoint, for logging.
func (f *Feed) URL() string {
	return f.client.baseURL + f.path
}

// get performs the GET request and returns the decoded body bytes.
func (c *Client) get(ctx context.Context, path string, force bool) ([]byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", path, err)
	}
	if force {
		q := u.Query()
		q.Set("force_refresh", "true")
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}
	return data, nil
}

// decodeBody unwraps the response according to Content-Encoding.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}

// Decode extracts the record array from a response body. A bare array is
// accepted as is; an object is searched for wrapper (if set) and then
// WrapperKeys. Array elements that are not objects are skipped.
func Decode(body []byte, wrapper string) ([]model.Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}
	res := gjson.ParseBytes(body)
	if res.IsArray() {
		return records(res), nil
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: expected array or object", ErrMalformedResponse)
	}

	fields := res.Map()
	if s, ok := fields["success"]; ok && s.Type == gjson.False {
		return nil, fmt.Errorf("%w: %s", ErrSourceFailure, fields["error"].String())
	}
	if e, ok := fields["error"]; ok && e.String() != "" && fields["success"].Type != gjson.True {
		return nil, fmt.Errorf("%w: %s", ErrSourceFailure, e.String())
	}

	keys := WrapperKeys
	if wrapper != "" {
		keys = append([]string{wrapper}, WrapperKeys...)
	}
	for _, k := range keys {
		if v, ok := fields[k]; ok && v.IsArray() {
			return records(v), nil
		}
	}
	return nil, fmt.Errorf("%w: no record array under %v", ErrMalformedResponse, keys)
}

func records(arr gjson.Result) []model.Record {
	out := make([]model.Record, 0, len(arr.Array()))
	arr.ForEach(func(_, el gjson.Result) bool {
		if m, ok := el.Value().(map[string]interface{}); ok {
			out = append(out, model.Record(m))
		}
		return true
	})
	return out
}
