package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

const maxBody = 1 << 20 // 1 MB

// Request wraps *http.Request with input helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes a JSON body into v. Form bodies are mapped onto v's json tags.
func (req *Request) Bind(v any) error {
	if req.IsJSON() {
		body, err := req.body()
		if err != nil {
			return err
		}
		return errors.Wrap(json.Unmarshal(body, v), "invalid JSON body")
	}

	if err := req.raw.ParseForm(); err != nil {
		return errors.Wrap(err, "invalid form body")
	}
	b, err := json.Marshal(flatten(req.raw.PostForm))
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.Wrap(json.Unmarshal(b, v), "invalid form body")
}

// Fields returns the body as a flat field → string map, the shape the
// validator works on. JSON scalars are formatted with fmt; nested values are
// re-encoded as JSON.
func (req *Request) Fields() (map[string]string, error) {
	if !req.IsJSON() {
		if err := req.raw.ParseForm(); err != nil {
			return nil, errors.Wrap(err, "invalid form body")
		}
		return flatten(req.raw.PostForm), nil
	}

	body, err := req.body()
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid JSON body")
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case map[string]any, []any:
			b, _ := json.Marshal(val)
			out[k] = string(b)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func (req *Request) body() ([]byte, error) {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read request body")
	}
	if len(body) == 0 {
		return nil, errors.New("empty request body")
	}
	return body, nil
}

func flatten(values map[string][]string) map[string]string {
	m := make(map[string]string, len(values))
	for k, vals := range values {
		if len(vals) > 0 {
			m[k] = vals[0]
		}
	}
	return m
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// HeaderList splits a comma-separated header into trimmed, non-empty items.
func (req *Request) HeaderList(key string) []string {
	var out []string
	for _, item := range strings.Split(req.raw.Header.Get(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSON returns true when the body is JSON.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.ContentType(), "application/json")
}
