// Package testutil provides shared testing utilities and constants for the hrdir client.
//
// This package centralizes common test constants, helper functions, and mock builders
// to reduce duplication across test files.
//
// # Key Components
//
// Constants: Shared test values (tokens, endpoints, resource names) defined in constants.go
//
// MockServerBuilder: Fluent interface for creating mock HTTP servers with scripted
// response sequences and paged endpoints
//
// RecordingTimer: backoff.Timer implementation that records requested waits and
// fires immediately, so retry tests never sleep
//
// # Usage Examples
//
// Creating a mock server:
//
//	server := testutil.NewMockServer().
//	    WithSequence("/users/5",
//	        testutil.Reply(http.StatusTooManyRequests, nil).WithHeader("Retry-After", "3"),
//	        testutil.Reply(http.StatusOK, user)).
//	    WithPagedEndpoint("/statuses", "statuses", pages).
//	    Build()
//	defer server.Close()
package testutil

// HTTP headers
const (
	ContentTypeHeader   = "Content-Type"
	AcceptHeader        = "Accept"
	AuthorizationHeader = "Authorization"
	RetryAfterHeader    = "Retry-After"
)

// Common test values
const (
	ContentTypeJSON    = "application/json"
	TestToken          = "test-bearer-token-0123456789"
	TestBearerAuth     = "Bearer " + TestToken
	TestBaseURL        = "https://hr.example.com/api/v1"
	TestOTELEndpoint   = "localhost:4317"
	TestServiceName    = "hrdir-test"
	TestServiceVersion = "0.0.0-test"
	TestRedisKeyPrefix = "hrdir-test:"
)

// Resource names and paths
const (
	TestResourceUsers    = "users"
	TestResourceStatuses = "statuses"
	TestPathUsers        = "/users"
	TestPathStatuses     = "/statuses"
)

// TestErrorExpectedErrorContaining is the failure format for error substring checks.
const TestErrorExpectedErrorContaining = "expected error containing %q, got %v"
