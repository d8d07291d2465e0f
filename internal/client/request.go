package client

import (
	"net/http"
	"strings"
)

// Request describes one call to the HR directory API. Build it with NewRequest;
// it is not modified afterwards.
type Request struct {
	method  string
	path    string
	url     string
	body    interface{}
	headers map[string]string
	fields  map[string]string
}

// RequestOption configures a Request under construction.
type RequestOption func(*Request)

// AtPath targets a path relative to the client's base URL.
func AtPath(path string) RequestOption {
	return func(r *Request) {
		r.path = path
	}
}

// AtURL targets an absolute URL; the base URL is not applied.
func AtURL(url string) RequestOption {
	return func(r *Request) {
		r.url = url
	}
}

// WithBody sets the request body. Values other than []byte and string are
// JSON-encoded by the transport.
func WithBody(body interface{}) RequestOption {
	return func(r *Request) {
		r.body = body
	}
}

// WithHeaders replaces the client's default headers for this request.
// Authorization is not added back: the caller owns every header it passes.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		r.headers = copyMap(headers)
	}
}

// WithFields sets query parameters. Only valid for GET requests.
func WithFields(fields map[string]string) RequestOption {
	return func(r *Request) {
		r.fields = copyMap(fields)
	}
}

// NewRequest builds a validated Request.
//
// Returns a *ConfigError when:
//   - neither a path nor a URL is given (ErrMissingTarget)
//   - both a path and a URL are given (ErrAmbiguousTarget)
//   - query fields are given with a verb other than GET (ErrFieldsRequireGET)
func NewRequest(method string, opts ...RequestOption) (*Request, error) {
	r := &Request{method: strings.ToUpper(method)}
	if r.method == "" {
		r.method = http.MethodGet
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Get is shorthand for NewRequest(http.MethodGet, AtPath(path), opts...).
func Get(path string, opts ...RequestOption) (*Request, error) {
	return NewRequest(http.MethodGet, append([]RequestOption{AtPath(path)}, opts...)...)
}

func (r *Request) validate() error {
	if r.path == "" && r.url == "" {
		return configError("build request", ErrMissingTarget, "")
	}
	if r.path != "" && r.url != "" {
		return configError("build request", ErrAmbiguousTarget, "path="+r.path+", url="+r.url)
	}
	if r.fields != nil && r.method != http.MethodGet {
		return configError("build request", ErrFieldsRequireGET, "method="+r.method)
	}
	return nil
}

// Method returns the HTTP verb.
func (r *Request) Method() string { return r.method }

// Path returns the base-relative path, or "" for absolute-URL requests.
func (r *Request) Path() string { return r.path }

// URL returns the absolute URL, or "" for path requests.
func (r *Request) URL() string { return r.url }

// Fields returns a copy of the query fields.
func (r *Request) Fields() map[string]string { return copyMap(r.fields) }

// target resolves the full URL against baseURL.
func (r *Request) target(baseURL string) string {
	if r.url != "" {
		return r.url
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(r.path, "/")
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
