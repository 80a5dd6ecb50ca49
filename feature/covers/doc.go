// Package covers implements the cover workflow of a bibliographic record.
//
// # Refresh Pipeline
//
// A refresh is an explicit sequence: load the record from the catalog,
// parse its MARCXML body, extract identifiers and cover annotations, fetch
// the live cover set from the resolver, reconcile the two and, when allowed,
// persist the replacement annotation. The persisted record is parsed again
// so the session always reflects what the catalog stores.
//
// # Sessions
//
// Each caller works in a session holding the current record and covers.
// Every operation takes a fresh token from its session; a result is only
// committed when its token is still the latest one, so a late response of a
// superseded refresh never overwrites newer state (ErrSuperseded).
// Passes for the same record id never run concurrently, and identical
// concurrent refreshes are coalesced with singleflight.
//
// # Cover Management
//
// Uploads must sniff as an image and stay below 1 MiB. Replacing a record
// that already has a cover from the primary source requires explicit
// confirmation. Uploads and deletions are followed by a new live set fetch
// and reconciliation. Images may also be staged in the MinIO bucket first.
package covers
