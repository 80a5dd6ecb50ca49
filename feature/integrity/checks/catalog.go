package checks

import (
	"context"
	"time"

	"cover-manager/core/clients/loader"
)

// CatalogReport is the result of a catalog reachability check.
type CatalogReport struct {
	Reachable   bool   `json:"reachable"`
	Institution string `json:"institution,omitempty"`
	Tenant      string `json:"tenant,omitempty"`
	LatencyMS   int64  `json:"latency_ms"`
	Error       string `json:"error,omitempty"`
}

// CheckCatalog resolves the institution code, which needs a working
// catalog endpoint and API key.
func CheckCatalog(ctx context.Context, source loader.InstitutionSource) *CatalogReport {
	start := time.Now()
	inst, err := source.Institution(ctx)
	report := &CatalogReport{LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Reachable = true
	report.Institution = inst.Full
	report.Tenant = inst.Tenant
	return report
}
