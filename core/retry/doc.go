// Package retry guards calls to unreliable upstream services.
//
// A failed call is inspected for an HTTP-like status code. Client errors
// (status below 500) are returned at once and unchanged. Server errors are
// retried after a fixed delay, up to MaxRetries times; when every attempt
// fails the last error is wrapped in an ExhaustedError.
//
// Only idempotent reads go through Do. Writes (uploads, deletes, record
// updates) surface their first error.
//
// # Usage
//
//	policy := retry.NewPolicy(cfg.Retry, logger)
//	rec, err := retry.Do(ctx, policy, "fetch bib", func(ctx context.Context) (*bib.Record, error) {
//	    return client.get(ctx, id)
//	})
package retry
