// Package integrity provides health checks for the stores the cover workflow depends on.
//
// # Checks Provided
//
//   - Staging: the staging bucket exists and holds no empty or oversized images.
//   - History: the reconciliation history table has every mapped column.
//   - Catalog: the catalog answers the institution lookup with the configured key.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/staging : Runs the staging check (supports ?fix=true).
//   - GET /integrity/history : Runs the history schema check (supports ?fix=true).
//   - GET /integrity/catalog : Runs the catalog check.
package integrity
