package client

import (
	"io"
	"testing"

	"github.com/fjacquet/hrdir/internal/models"
	"github.com/fjacquet/hrdir/internal/testutil"
	log "github.com/sirupsen/logrus"
)

// Test constants shared by the client tests.
const (
	testToken      = testutil.TestToken
	testBearerAuth = testutil.TestBearerAuth
	retryAfter     = testutil.RetryAfterHeader
)

// testConfig returns a configuration pointing at baseURL with the default
// retry policy.
func testConfig(baseURL string) models.Config {
	var cfg models.Config
	cfg.API.BaseURL = baseURL
	cfg.API.Token = testToken
	cfg.SetDefaults()
	return cfg
}

// quietLogger returns a log entry that discards output.
func quietLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

// newTestClient builds a client for cfg whose backoff waits are recorded by
// the returned timer instead of slept.
func newTestClient(t *testing.T, cfg models.Config, opts ...Option) (*Client, *testutil.RecordingTimer) {
	t.Helper()
	timer := testutil.NewRecordingTimer()
	all := append([]Option{WithTimer(timer), WithLogger(quietLogger())}, opts...)
	c, err := New(cfg, all...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(c.Close)
	return c, timer
}
