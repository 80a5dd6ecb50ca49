// Package reconcile keeps the active-cover annotation of a bib record in
// step with the covers the resolver service actually holds.
//
// Two sources of truth are compared:
//
//  1. Live cover set: every cover the resolver returns for the record's
//     identifiers, grouped by source.
//  2. Stored annotation: the active cover codes recorded in the record's
//     control fields (see bib.ExtractCovers).
//
// # Decision
//
// Decide builds the activated set from the live covers (one
// "<ID_TYPE><id_code>" code per active cover) and flags drift when:
//   - the primary source is recorded but the resolver no longer has it, or
//   - a live source is not recorded, or its codes differ in either direction.
//
// When drift is found the payload is the whole activated set. It replaces
// the stored annotation; it is never merged into it.
//
// # Applying
//
// Apply writes the payload through a Persister, only when the options allow
// mutations (Confirmed and not DryRun).
//
// # Usage
//
//	decision := reconcile.Decide(live, covers.Active, schema.PrimarySource)
//	if decision.NeedsUpdate {
//	    updated, err := reconcile.Apply(ctx, catalog, rec.RecordID(), decision, opts)
//	}
package reconcile
