package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fjacquet/hrdir/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Resource is a top-level collection of the HR directory API. Its name is
// both the URL path segment and the array field of a listing envelope.
type Resource string

// Collections exposed by the API.
const (
	ResourceUsers       Resource = "users"
	ResourceStatuses    Resource = "statuses"
	ResourceDepartments Resource = "departments"
	ResourceLocations   Resource = "locations"
)

var knownResources = []Resource{ResourceUsers, ResourceStatuses, ResourceDepartments, ResourceLocations}

// ParseResource maps a collection name to its Resource.
func ParseResource(name string) (Resource, error) {
	for _, r := range knownResources {
		if string(r) == name {
			return r, nil
		}
	}
	return "", configError("parse resource", ErrInvalidParameter, fmt.Sprintf("unknown resource %q", name))
}

func (r Resource) validate() error {
	_, err := ParseResource(string(r))
	return err
}

// CacheKey returns the cache key under which Get stores resource id.
func CacheKey(resource Resource, id int) string {
	return string(resource) + "/" + strconv.Itoa(id)
}

// Get fetches one object of resource by id. With a cache configured, a hit
// is served without a network call and a fetched object is stored.
func (c *Client) Get(ctx context.Context, resource Resource, params GetParams) (interface{}, error) {
	if err := resource.validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ctx, span := c.tracing.StartSpan(ctx, "hrdir.get", trace.SpanKindInternal,
		attribute.String(telemetry.AttrResource, string(resource)),
		attribute.Int(telemetry.AttrResourceID, params.ID),
	)
	defer span.End()

	key := CacheKey(resource, params.ID)
	if v, ok := c.cacheLookup(ctx, key, span); ok {
		return v, nil
	}

	req, err := Get(key)
	if err != nil {
		return nil, err
	}
	v, err := c.Execute(ctx, req)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	c.cacheStore(ctx, key, v)
	return v, nil
}

// List fetches every object of resource, or only those under params.ID when
// it is set, stopping early once params.Size objects are held.
func (c *Client) List(ctx context.Context, resource Resource, params ListParams) ([]interface{}, error) {
	if err := resource.validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	path := string(resource)
	if params.ID > 0 {
		path = CacheKey(resource, params.ID)
	}
	return c.Paginate(ctx, PageRequest{
		Method: http.MethodGet,
		Path:   path,
		Field:  string(resource),
	}, params.Size)
}

// InvalidateCache removes key from the cache and reports whether an entry
// was removed. It returns false when no cache is configured.
func (c *Client) InvalidateCache(ctx context.Context, key string) bool {
	if c.cache == nil {
		return false
	}
	removed, err := c.cache.Delete(ctx, key)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache delete failed")
		return false
	}
	return removed
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, id int) (interface{}, error) {
	return c.getByID(ctx, ResourceUsers, id)
}

// ListUsers lists users, capped at size when size > 0.
func (c *Client) ListUsers(ctx context.Context, size int) ([]interface{}, error) {
	return c.listAll(ctx, ResourceUsers, 0, size)
}

// ListStatuses lists the statuses of all users, or of one user when userID > 0.
func (c *Client) ListStatuses(ctx context.Context, userID, size int) ([]interface{}, error) {
	return c.listAll(ctx, ResourceStatuses, userID, size)
}

// GetDepartment fetches one department.
func (c *Client) GetDepartment(ctx context.Context, id int) (interface{}, error) {
	return c.getByID(ctx, ResourceDepartments, id)
}

// ListDepartments lists departments.
func (c *Client) ListDepartments(ctx context.Context, size int) ([]interface{}, error) {
	return c.listAll(ctx, ResourceDepartments, 0, size)
}

// GetLocation fetches one location.
func (c *Client) GetLocation(ctx context.Context, id int) (interface{}, error) {
	return c.getByID(ctx, ResourceLocations, id)
}

// ListLocations lists locations.
func (c *Client) ListLocations(ctx context.Context, size int) ([]interface{}, error) {
	return c.listAll(ctx, ResourceLocations, 0, size)
}

func (c *Client) getByID(ctx context.Context, resource Resource, id int) (interface{}, error) {
	params, err := NewGetParams(id)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, resource, params)
}

func (c *Client) listAll(ctx context.Context, resource Resource, id, size int) ([]interface{}, error) {
	params, err := NewListParams(id, size)
	if err != nil {
		return nil, err
	}
	return c.List(ctx, resource, params)
}

// cacheLookup returns a cached object. Backend failures and corrupt entries
// count as misses.
func (c *Client) cacheLookup(ctx context.Context, key string, span trace.Span) (interface{}, bool) {
	if c.cache == nil {
		return nil, false
	}
	logger := c.logger.WithField("key", key)

	raw, found, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.WithError(err).Warn("Cache lookup failed, fetching from API")
		c.markCache(span, cacheResultError)
		return nil, false
	}
	if !found {
		c.markCache(span, cacheResultMiss)
		return nil, false
	}

	v, err := decodeBody(raw, contentTypeJSON, key)
	if err != nil || v == nil {
		logger.Warn("Discarding unreadable cache entry")
		c.markCache(span, cacheResultError)
		return nil, false
	}
	logger.Debug("Cache hit")
	c.markCache(span, cacheResultHit)
	return v, true
}

func (c *Client) cacheStore(ctx context.Context, key string, v interface{}) {
	if c.cache == nil || v == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cannot encode object for cache")
		return
	}
	if err := c.cache.Set(ctx, key, raw); err != nil {
		c.logger.WithFields(log.Fields{"key": key, "error": err}).Warn("Cache store failed")
	}
}

func (c *Client) markCache(span trace.Span, result string) {
	c.metrics.observeCache(result)
	span.SetAttributes(attribute.String(telemetry.AttrCacheResult, result))
}
