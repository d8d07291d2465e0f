package telemetry

// Error message templates for failures that need operator action. Each one
// names the likely causes and the configuration keys involved.
//
// Usage:
//
//	if httpErr.IsUnauthorized() {
//	    logger.Errorf(telemetry.ErrUnauthorizedTemplate, status, url)
//	}
const (
	// ErrUnauthorizedTemplate is logged when the API rejects the bearer token (401 or 403).
	ErrUnauthorizedTemplate = `HR directory API rejected the bearer token (HTTP %d).

This usually indicates:
1. The token in 'api.token' has expired or was revoked
2. The token belongs to an account without access to this resource
3. 'api.baseURL' points at a different tenant than the token was issued for

Troubleshooting steps:
1. Request a new access token from the HR directory admin console
2. Update config.yaml:
     api:
       token: "<new token>"
3. Re-run: hrdir --config config.yaml get users me

Request URL: %s`

	// ErrNonJSONResponseTemplate is logged when a successful response is not JSON.
	ErrNonJSONResponseTemplate = `HR directory API returned a non-JSON response (Content-Type: %s).

This usually indicates:
1. Wrong API endpoint URL (check 'api.baseURL' in config.yaml)
2. A proxy or login page intercepting the request
3. Server maintenance page

Request URL: %s
Response preview: %s`
)
