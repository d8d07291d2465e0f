package client

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		opts    []RequestOption
		wantErr error
	}{
		{
			name:    "no path and no url",
			method:  http.MethodGet,
			wantErr: ErrMissingTarget,
		},
		{
			name:    "both path and url",
			method:  http.MethodGet,
			opts:    []RequestOption{AtPath("users"), AtURL("https://hr.example.com/users")},
			wantErr: ErrAmbiguousTarget,
		},
		{
			name:    "fields on POST",
			method:  http.MethodPost,
			opts:    []RequestOption{AtPath("users"), WithFields(map[string]string{"q": "x"})},
			wantErr: ErrFieldsRequireGET,
		},
		{
			name:    "empty fields map still counts on DELETE",
			method:  http.MethodDelete,
			opts:    []RequestOption{AtPath("users/1"), WithFields(map[string]string{})},
			wantErr: ErrFieldsRequireGET,
		},
		{
			name:   "fields on GET",
			method: http.MethodGet,
			opts:   []RequestOption{AtPath("users"), WithFields(map[string]string{"q": "x"})},
		},
		{
			name:   "absolute url",
			method: http.MethodGet,
			opts:   []RequestOption{AtURL("https://hr.example.com/api/v1/users?page=2")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.method, tt.opts...)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NotNil(t, req)
				return
			}
			require.Error(t, err)
			assert.Nil(t, req)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %T", err)
		})
	}
}

func TestNewRequest_MethodNormalisation(t *testing.T) {
	req, err := NewRequest("", AtPath("users"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method())

	req, err = NewRequest("post", AtPath("users"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method())
}

func TestGet_Shorthand(t *testing.T) {
	req, err := Get("statuses", WithFields(map[string]string{"active": "true"}))
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method())
	assert.Equal(t, "statuses", req.Path())
	assert.Empty(t, req.URL())
	assert.Equal(t, map[string]string{"active": "true"}, req.Fields())
}

func TestRequest_OptionsCopyMaps(t *testing.T) {
	fields := map[string]string{"a": "1"}
	headers := map[string]string{"X-Trace": "abc"}
	req, err := Get("users", WithFields(fields), WithHeaders(headers))
	require.NoError(t, err)

	fields["a"] = "changed"
	headers["X-Trace"] = "changed"

	assert.Equal(t, "1", req.Fields()["a"])
	assert.Equal(t, "abc", req.headers["X-Trace"])

	got := req.Fields()
	got["a"] = "mutated"
	assert.Equal(t, "1", req.Fields()["a"], "Fields must return a copy")
}

func TestRequest_Target(t *testing.T) {
	tests := []struct {
		name    string
		opt     RequestOption
		baseURL string
		want    string
	}{
		{"plain join", AtPath("users/5"), "https://hr.example.com/api/v1", "https://hr.example.com/api/v1/users/5"},
		{"trailing slash on base", AtPath("users"), "https://hr.example.com/api/v1/", "https://hr.example.com/api/v1/users"},
		{"leading slash on path", AtPath("/users"), "https://hr.example.com/api/v1", "https://hr.example.com/api/v1/users"},
		{"query kept", AtPath("statuses?page=2"), "https://hr.example.com", "https://hr.example.com/statuses?page=2"},
		{"absolute url ignores base", AtURL("https://other.example.com/x"), "https://hr.example.com", "https://other.example.com/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(http.MethodGet, tt.opt)
			require.NoError(t, err)
			if got := req.target(tt.baseURL); got != tt.want {
				t.Errorf("target() = %q, want %q", got, tt.want)
			}
		})
	}
}
