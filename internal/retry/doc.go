// Package retry wraps a single remote call with status-aware exponential
// backoff.
//
// Calls report HTTP failures as *StatusError. A 404 is terminal and never
// retried. 401, 402, 429 and 5xx gateway statuses back off and retry, honoring
// the server's Retry-After hint. Any other error is returned immediately as a
// transport failure, and a call that completes without an error is never
// retried, whatever value it produced.
package retry
