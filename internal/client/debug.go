package client

import (
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// traceEnabled reports whether full request/response dumps should be produced.
func traceEnabled(logger *log.Entry) bool {
	return logger.Logger.IsLevelEnabled(log.TraceLevel)
}

// dumpRequest logs the outgoing request at trace level. The bearer token is masked.
func dumpRequest(logger *log.Entry, method, url string, headers map[string]string, body interface{}) {
	logger.WithFields(log.Fields{
		"method":  method,
		"url":     url,
		"headers": maskHeaders(headers),
		"body":    body,
	}).Trace("Request dump")
}

// dumpResponse logs the response and its connection trace info at trace level.
func dumpResponse(logger *log.Entry, resp *resty.Response) {
	ti := resp.Request.TraceInfo()
	logger.WithFields(log.Fields{
		"status_code":      resp.StatusCode(),
		"status":           resp.Status(),
		"proto":            resp.Proto(),
		"time":             resp.Time().String(),
		"received_at":      resp.ReceivedAt(),
		"headers":          resp.Header(),
		"body":             string(resp.Body()),
		"dns_lookup":       ti.DNSLookup.String(),
		"conn_time":        ti.ConnTime.String(),
		"tls_handshake":    ti.TLSHandshake.String(),
		"server_time":      ti.ServerTime.String(),
		"total_time":       ti.TotalTime.String(),
		"is_conn_reused":   ti.IsConnReused,
		"is_conn_was_idle": ti.IsConnWasIdle,
	}).Trace("Response dump")
}

func maskHeaders(headers map[string]string) map[string]string {
	masked := make(map[string]string, len(headers))
	for k, v := range headers {
		if strings.EqualFold(k, "Authorization") {
			v = maskAuthorization(v)
		}
		masked[k] = v
	}
	return masked
}

func maskAuthorization(v string) string {
	scheme, token, found := strings.Cut(v, " ")
	if !found {
		return "****"
	}
	if len(token) <= 8 {
		return scheme + " ****"
	}
	return scheme + " " + token[:4] + "****" + token[len(token)-4:]
}

// reasonPhrase extracts the reason phrase from a status line such as "404 Not Found".
func reasonPhrase(resp *resty.Response) string {
	status := resp.Status()
	code := resp.StatusCode()
	if _, reason, found := strings.Cut(status, " "); found && reason != "" {
		return reason
	}
	return http.StatusText(code)
}
