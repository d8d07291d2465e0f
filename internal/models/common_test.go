package models

import "github.com/fjacquet/hrdir/internal/testutil"

// Shared test constants - aliased from testutil
const (
	testBaseURL      = testutil.TestBaseURL
	testToken        = testutil.TestToken
	testOTELEndpoint = testutil.TestOTELEndpoint
)
