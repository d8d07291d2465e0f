package client

import "context"

// DirectoryAPI is the read-only surface of the HR directory used by the CLI.
// *Client is the only production implementation; tests substitute fakes.
type DirectoryAPI interface {
	// Get fetches one object of resource by id, through the cache when one is set.
	Get(ctx context.Context, resource Resource, params GetParams) (interface{}, error)

	// List fetches a paginated collection, optionally filtered and capped.
	List(ctx context.Context, resource Resource, params ListParams) ([]interface{}, error)

	// InvalidateCache removes one cached object and reports whether it existed.
	InvalidateCache(ctx context.Context, key string) bool

	// Ping verifies connectivity and credentials with a single request.
	Ping(ctx context.Context) error
}

var _ DirectoryAPI = (*Client)(nil)
