package dnscheck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rulemailer/dnscheck/dns"
	"github.com/rulemailer/dnscheck/provider"
)

// ProvisionResult reports what one provisioning run did.
type ProvisionResult struct {
	// ID is a unique identifier for this run, for log correlation.
	ID string `json:"id"`

	Domain string `json:"domain"`

	// Created holds the target records that were created.
	Created []RequiredRecord `json:"created"`

	// Deleted holds the provider records removed because their type or
	// value conflicted with a target record.
	Deleted []provider.Record `json:"deleted"`

	// Skipped holds the target records that needed no creation: either
	// live DNS already satisfied their purpose, or a matching provider
	// record already existed.
	Skipped []RequiredRecord `json:"skipped"`

	// Updated holds provider records patched in place (proxied records
	// switched to plain DNS).
	Updated []provider.Record `json:"updated"`

	// Warnings carries the check warnings from the pre-provisioning
	// check run.
	Warnings []Warning `json:"warnings"`
}

// ProvisionerConfig contains configuration options for a Provisioner.
type ProvisionerConfig struct {
	// Provider is the DNS host to converge. Required.
	Provider provider.Provider

	// Resolver performs the pre-provisioning check lookups.
	// Default: dns.NewStdResolver()
	Resolver dns.Resolver

	// Target is the configuration to converge towards.
	// Default: DefaultTarget
	Target *Target

	// Logger receives logging for individual record operations.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Provisioner converges a DNS host's records towards a Target
// configuration. It is safe for concurrent use as long as runs touch
// different zones; concurrent runs against the same zone race at the
// provider.
type Provisioner struct {
	provider provider.Provider
	checker  *Checker
	target   Target
	log      *slog.Logger
}

// NewProvisioner creates a Provisioner, applying ProvisionerConfig
// defaults.
func NewProvisioner(cfg ProvisionerConfig) *Provisioner {
	p := &Provisioner{
		provider: cfg.Provider,
		target:   DefaultTarget,
		log:      cfg.Logger,
	}
	if cfg.Target != nil {
		p.target = *cfg.Target
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	p.checker = NewChecker(CheckerConfig{
		Resolver: cfg.Resolver,
		Target:   &p.target,
		Logger:   p.log,
	})
	return p
}

// Provision computes and applies the minimal set of create/delete/update
// operations bringing the provider's records into agreement with the
// target configuration for domain. Re-running against converged state
// performs no mutations.
//
// Records whose purpose live DNS already satisfies are skipped without
// any provider round-trip. The rest are processed in the fixed order
// mx-spf, dkim, dmarc: conflicting records at the target name are deleted
// first, then the target record is created unless a matching one already
// exists. A matching record that the provider reports as proxied is
// switched to plain DNS when the provider supports updates.
//
// Mutations are not transactional. When a provider call fails, Provision
// stops and returns the partial result accumulated so far alongside the
// error; callers must not assume any particular subset of the remaining
// actions was applied.
func (p *Provisioner) Provision(ctx context.Context, domain string) (*ProvisionResult, error) {
	if p.provider == nil {
		return nil, ErrNoProvider
	}

	domain = Normalize(domain)

	check, err := p.checker.Check(ctx, domain)
	if err != nil {
		return nil, err
	}

	required := UnmetRecords(p.target, check)
	result := &ProvisionResult{
		ID:       newRunID(),
		Domain:   domain,
		Warnings: check.Warnings,
	}

	// Targets whose purpose DNS already satisfies never reach the
	// provider; this keeps re-runs free of API calls.
	unmet := make(map[Purpose]bool, len(required))
	for _, rec := range required {
		unmet[rec.Purpose] = true
	}
	for _, rec := range RequiredRecords(p.target, domain) {
		if !unmet[rec.Purpose] {
			result.Skipped = append(result.Skipped, rec)
		}
	}

	for _, rec := range required {
		if err := p.converge(ctx, rec, result); err != nil {
			return result, err
		}
	}

	p.log.Info("provisioning complete",
		slog.String("provision_id", result.ID),
		slog.String("domain", domain),
		slog.Int("created", len(result.Created)),
		slog.Int("deleted", len(result.Deleted)),
		slog.Int("updated", len(result.Updated)),
		slog.Int("skipped", len(result.Skipped)))

	return result, nil
}

// converge brings the provider records at rec.Name into agreement with
// rec: conflicting records are deleted before the target is created.
func (p *Provisioner) converge(ctx context.Context, rec RequiredRecord, result *ProvisionResult) error {
	existing, err := p.provider.Records(ctx, rec.Name)
	if err != nil {
		return fmt.Errorf("dnscheck: fetch records for %s: %w", rec.Name, err)
	}

	var matching []provider.Record
	for _, ex := range existing {
		if recordMatches(ex, rec) {
			matching = append(matching, ex)
			continue
		}
		if err := p.provider.DeleteRecord(ctx, ex.ID); err != nil {
			return fmt.Errorf("dnscheck: delete record %s at %s: %w", ex.ID, ex.Name, err)
		}
		p.log.Info("deleted conflicting record",
			slog.String("name", ex.Name),
			slog.String("type", ex.Type),
			slog.String("value", ex.Value))
		result.Deleted = append(result.Deleted, ex)
	}

	if len(matching) == 0 {
		created, err := p.provider.CreateRecord(ctx, provider.Record{
			Type:  rec.Type,
			Name:  rec.Name,
			Value: rec.Value,
		})
		if err != nil {
			return fmt.Errorf("dnscheck: create %s record at %s: %w", rec.Type, rec.Name, err)
		}
		p.log.Info("created record",
			slog.String("id", created.ID),
			slog.String("name", rec.Name),
			slog.String("type", rec.Type))
		result.Created = append(result.Created, rec)
		return nil
	}

	for _, ex := range matching {
		if !ex.Proxied {
			continue
		}
		updater, ok := p.provider.(provider.RecordUpdater)
		if !ok {
			continue
		}
		proxied := false
		updated, err := updater.UpdateRecord(ctx, ex.ID, provider.Update{Proxied: &proxied})
		if err != nil {
			return fmt.Errorf("dnscheck: disable proxying for %s at %s: %w", ex.ID, ex.Name, err)
		}
		p.log.Info("disabled proxying",
			slog.String("id", ex.ID),
			slog.String("name", ex.Name))
		result.Updated = append(result.Updated, updated)
	}

	result.Skipped = append(result.Skipped, rec)
	return nil
}

// recordMatches reports whether an existing provider record satisfies a
// target record. Values compare case-insensitively and ignore a trailing
// dot, so "to.target.se" matches "TO.TARGET.SE.".
func recordMatches(ex provider.Record, rec RequiredRecord) bool {
	return strings.EqualFold(ex.Type, rec.Type) && dns.EqualName(ex.Value, rec.Value)
}
