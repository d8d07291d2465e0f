package telemetry

// HTTP semantic convention attributes
const (
	AttrHTTPMethod                = "http.method"
	AttrHTTPURL                   = "http.url"
	AttrHTTPStatusCode            = "http.status_code"
	AttrHTTPResponseContentLength = "http.response_content_length"
	AttrHTTPDurationMS            = "http.duration_ms"
	AttrHTTPAttempt               = "http.attempt"
	AttrHTTPAttempts              = "http.attempts"
)

// HR directory attributes
const (
	AttrCallID          = "hrdir.call_id"
	AttrResource        = "hrdir.resource"
	AttrResourceID      = "hrdir.resource_id"
	AttrCacheResult     = "hrdir.cache_result"
	AttrPageField       = "hrdir.page.field"
	AttrPageNumber      = "hrdir.page.number"
	AttrPageCount       = "hrdir.page.count"
	AttrPageItems       = "hrdir.page.items"
	AttrPaginationTotal = "hrdir.pagination.total_items"
	AttrPaginationPages = "hrdir.pagination.pages"
	AttrPaginationCap   = "hrdir.pagination.size_cap"
)

// Error attributes
const (
	AttrError = "error"
)
