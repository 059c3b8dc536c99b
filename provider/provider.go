// Package provider defines the DNS-host abstraction the provisioner
// mutates records through, plus supporting pieces shared by the concrete
// adapters: zone-ID memoization and nameserver-based provider detection.
//
// Adapters for concrete DNS hosts live in subpackages (cloudflare,
// clouddns, rfc2136). An adapter implements Provider; adapters whose API
// can patch records in place additionally implement RecordUpdater.
package provider

import "context"

// Record is a DNS record as the provider stores it. The ID is
// provider-assigned and only meaningful to the provider that returned it.
type Record struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	TTL     int    `json:"ttl,omitempty"`
	Proxied bool   `json:"proxied,omitempty"`
}

// Provider is a DNS host that records can be read from and written to.
// Implementations must be safe for concurrent use, and must memoize any
// one-time lookup (such as resolving a domain to a zone ID) so that
// concurrent callers trigger exactly one underlying request; ZoneCache
// provides that behavior.
type Provider interface {
	// Records returns all records at the given fully-qualified name.
	Records(ctx context.Context, name string) ([]Record, error)

	// CreateRecord creates a record and returns it with the
	// provider-assigned ID.
	CreateRecord(ctx context.Context, r Record) (Record, error)

	// DeleteRecord deletes the record with the given ID.
	DeleteRecord(ctx context.Context, id string) error
}

// Update describes a partial record modification. Nil fields are left
// unchanged.
type Update struct {
	Proxied *bool `json:"proxied,omitempty"`
}

// RecordUpdater is an optional capability for providers that can modify
// records in place. The provisioner checks for it with a type assertion;
// providers without it simply never get update calls.
type RecordUpdater interface {
	// UpdateRecord applies the non-nil fields of u to the record with
	// the given ID and returns the updated record.
	UpdateRecord(ctx context.Context, id string, u Update) (Record, error)
}
