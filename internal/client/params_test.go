package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetParams(t *testing.T) {
	tests := []struct {
		id      int
		wantErr bool
	}{
		{1, false},
		{987654, false},
		{0, true},
		{-1, true},
	}
	for _, tt := range tests {
		p, err := NewGetParams(tt.id)
		if tt.wantErr {
			require.Error(t, err, "id %d", tt.id)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
			assert.Contains(t, err.Error(), "ID must be greater than 0")
			continue
		}
		require.NoError(t, err, "id %d", tt.id)
		assert.Equal(t, tt.id, p.ID)
	}
}

func TestNewListParams(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		size    int
		wantErr string
	}{
		{"unfiltered and unbounded", 0, 0, ""},
		{"filtered and capped", 7, 25, ""},
		{"negative id", -1, 0, "ID must be at least 0"},
		{"negative size", 0, -10, "Size must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewListParams(tt.id, tt.size)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, ListParams{ID: tt.id, Size: tt.size}, p)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestListParams_MultipleViolations(t *testing.T) {
	err := ListParams{ID: -1, Size: -1}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ID must be at least 0")
	assert.Contains(t, err.Error(), "Size must be at least 0")
}
