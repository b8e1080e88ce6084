// Package source defines the capability contract every data source adapter
// must satisfy, plus the registry the orchestrator resolves adapters from.
// Adapters do one outbound attempt per Lookup and never retry internally;
// retry and admission policy belong to the orchestrator and governor.
package source

import (
	"context"

	"dossier/internal/search/models"
)

// Adapter is the universal interface all data sources implement. A Lookup
// covers exactly one outbound unit of work, so the orchestrator can gate each
// call with a single admission permit.
type Adapter interface {
	// Name returns a unique label for this adapter instance. It becomes the
	// Source field on findings and the key in per-source status reporting.
	Name() string

	// Kinds returns the query attribute kinds this adapter can look up.
	Kinds() []models.AttributeKind

	// Lookup resolves one attribute against the source and returns zero or
	// more findings, or a SourceError describing the failure.
	Lookup(ctx context.Context, attr models.Attribute) ([]models.Finding, error)
}
