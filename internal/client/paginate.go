package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fjacquet/hrdir/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QueryParamPage is the query parameter carrying the 1-based page number.
const QueryParamPage = "page"

const metaField = "meta"

// PageRequest describes a paginated listing. Field names both the array that
// holds the items and the entry under "meta" that holds page and page_count.
type PageRequest struct {
	Method string
	Path   string
	Field  string
}

// pageMeta is the pagination state reported for one field.
type pageMeta struct {
	Page      int
	PageCount int
}

// Paginate fetches successive pages of pr and returns the concatenation of
// their Field arrays in page order. A positive size stops the walk once at
// least size items are held; the last page is kept whole, so the result may
// be longer than size. The first page is always fetched.
//
// Any failure aborts the listing; items from earlier pages are discarded.
func (c *Client) Paginate(ctx context.Context, pr PageRequest, size int) ([]interface{}, error) {
	if pr.Field == "" {
		return nil, configError("paginate", ErrInvalidParameter, "field is required")
	}
	if pr.Path == "" {
		return nil, configError("paginate", ErrMissingTarget, "")
	}
	if size < 0 {
		return nil, configError("paginate", ErrInvalidParameter, fmt.Sprintf("size must be >= 0, got %d", size))
	}

	ctx, span := c.tracing.StartSpan(ctx, "hrdir.paginate", trace.SpanKindInternal,
		attribute.String(telemetry.AttrPageField, pr.Field),
		attribute.Int(telemetry.AttrPaginationCap, size),
	)
	defer span.End()

	logger := c.logger.WithFields(log.Fields{"path": pr.Path, "field": pr.Field})

	var items []interface{}
	pages := 0
	for page := 1; ; page++ {
		req, err := NewRequest(pr.Method, AtPath(pagePath(pr.Path, page)))
		if err != nil {
			recordError(span, err)
			return nil, err
		}

		body, err := c.Execute(ctx, req)
		if err != nil {
			recordError(span, err)
			return nil, err
		}
		pages++

		batch, meta, err := splitPage(body, pr.Field, req.target(c.cfg.API.BaseURL))
		if err != nil {
			recordError(span, err)
			return nil, err
		}
		items = append(items, batch...)

		span.AddEvent("page", trace.WithAttributes(
			attribute.Int(telemetry.AttrPageNumber, meta.Page),
			attribute.Int(telemetry.AttrPageCount, meta.PageCount),
			attribute.Int(telemetry.AttrPageItems, len(batch)),
		))
		logger.WithFields(log.Fields{
			"page":       meta.Page,
			"page_count": meta.PageCount,
			"items":      len(batch),
			"total":      len(items),
		}).Debug("Fetched page")

		if meta.Page >= meta.PageCount {
			break
		}
		if size > 0 && len(items) >= size {
			logger.WithField("size", size).Debug("Size cap reached, stopping pagination")
			break
		}
	}

	span.SetAttributes(
		attribute.Int(telemetry.AttrPaginationPages, pages),
		attribute.Int(telemetry.AttrPaginationTotal, len(items)),
	)
	if items == nil {
		items = []interface{}{}
	}
	return items, nil
}

// pagePath appends the page parameter, using "&" when path already has a query.
func pagePath(path string, page int) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + QueryParamPage + "=" + strconv.Itoa(page)
}

// splitPage extracts the field array and its page metadata from a decoded
// envelope. A missing or malformed envelope is a *DecodeError.
func splitPage(body interface{}, field, url string) ([]interface{}, pageMeta, error) {
	envelope, ok := body.(map[string]interface{})
	if !ok {
		return nil, pageMeta{}, envelopeError(url, "response is not a JSON object")
	}

	raw, ok := envelope[field]
	if !ok {
		return nil, pageMeta{}, envelopeError(url, fmt.Sprintf("missing %q array", field))
	}
	var batch []interface{}
	if raw != nil {
		if batch, ok = raw.([]interface{}); !ok {
			return nil, pageMeta{}, envelopeError(url, fmt.Sprintf("%q is not an array", field))
		}
	}

	meta, ok := envelope[metaField].(map[string]interface{})
	if !ok {
		return nil, pageMeta{}, envelopeError(url, "missing meta object")
	}
	fieldMeta, ok := meta[field].(map[string]interface{})
	if !ok {
		return nil, pageMeta{}, envelopeError(url, fmt.Sprintf("missing meta.%s object", field))
	}

	page, ok := intValue(fieldMeta["page"])
	if !ok {
		return nil, pageMeta{}, envelopeError(url, fmt.Sprintf("meta.%s.page is not an integer", field))
	}
	pageCount, ok := intValue(fieldMeta["page_count"])
	if !ok {
		return nil, pageMeta{}, envelopeError(url, fmt.Sprintf("meta.%s.page_count is not an integer", field))
	}
	return batch, pageMeta{Page: page, PageCount: pageCount}, nil
}

func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func envelopeError(url, detail string) error {
	return &DecodeError{URL: url, Err: fmt.Errorf("malformed page envelope: %s", detail)}
}
