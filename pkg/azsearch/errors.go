package azsearch

import "errors"

// Domain errors for commit operations, designed for error wrapping and
// classification with errors.Is. Detailed context (offending field, HTTP
// status, response body) is attached at the call site via fmt.Errorf("%w").
//
// Error classification strategy:
//   - ErrConfig: incomplete or illegal configuration (fail fast, raised
//     before any network call)
//   - ErrValidation: a field name or document key violates the service's
//     naming rules (downgradable to a logged skip via
//     Config.IgnoreValidationErrors)
//   - ErrResponse: the service answered with a non-success status
//     (downgradable via Config.IgnoreResponseErrors)
//   - ErrTransport: network or request-building failure; always fatal for
//     the batch
//   - ErrUnsupportedOperation: an operation kind other than add or delete
//     reached the committer; always fatal
var (
	ErrConfig               = errors.New("azure search committer misconfigured")
	ErrValidation           = errors.New("azure search validation failed")
	ErrResponse             = errors.New("azure search rejected the batch")
	ErrTransport            = errors.New("azure search request failed")
	ErrUnsupportedOperation = errors.New("unsupported commit operation")
	ErrClosed               = errors.New("azure search committer is closed")
)
