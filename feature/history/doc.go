// Package history keeps the audit trail of cover reconciliations.
//
// Every decision taken by a refresh, upload or delete is stored with the
// record id, the computed payload, the drift reasons and whether the record
// was rewritten. The trail lives in the optional database and is exposed at
// GET /records/:id/history, newest entry first.
package history
