// Package cloudflare adapts the Cloudflare v4 API to the provider
// interface. Cloudflare is the one supported host whose records can be
// proxied, so this adapter also implements the update capability used to
// switch proxied records back to plain DNS.
package cloudflare

import (
	"context"

	cf "github.com/cloudflare/cloudflare-go"
	"github.com/pkg/errors"

	"github.com/rulemailer/dnscheck/dns"
	"github.com/rulemailer/dnscheck/provider"
)

// Config contains the credentials and zone for one Cloudflare adapter.
type Config struct {
	// APIKey is the Cloudflare API key.
	APIKey string

	// Email is the account email the key belongs to.
	Email string

	// Zone is the zone name (registered domain) the records live in.
	Zone string
}

// Provider is a Cloudflare-backed DNS provider.
type Provider struct {
	api   *cf.API
	zone  string
	zones provider.ZoneCache
}

var (
	_ provider.Provider      = (*Provider)(nil)
	_ provider.RecordUpdater = (*Provider)(nil)
)

// New creates a Cloudflare provider for the configured zone.
func New(cfg Config) (*Provider, error) {
	api, err := cf.New(cfg.APIKey, cfg.Email)
	if err != nil {
		return nil, errors.Wrap(err, "cloudflare: create client")
	}
	return &Provider{api: api, zone: dns.CanonicalName(cfg.Zone)}, nil
}

// zoneID resolves and memoizes the zone identifier. Concurrent callers
// share a single ZoneIDByName request.
func (p *Provider) zoneID() (string, error) {
	return p.zones.ID(p.zone, func() (string, error) {
		id, err := p.api.ZoneIDByName(p.zone)
		if err != nil {
			return "", errors.Wrapf(err, "cloudflare: resolve zone %s", p.zone)
		}
		return id, nil
	})
}

// Records returns all records at the given name.
func (p *Provider) Records(ctx context.Context, name string) ([]provider.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := p.zoneID()
	if err != nil {
		return nil, err
	}

	records, err := p.api.DNSRecords(id, cf.DNSRecord{Name: dns.CanonicalName(name)})
	if err != nil {
		return nil, errors.Wrapf(err, "cloudflare: list records at %s", name)
	}

	out := make([]provider.Record, 0, len(records))
	for _, r := range records {
		out = append(out, fromAPI(r))
	}
	return out, nil
}

// CreateRecord creates a record in the zone. Records are created
// unproxied; proxying is never wanted for mail-sending records.
func (p *Provider) CreateRecord(ctx context.Context, r provider.Record) (provider.Record, error) {
	if err := ctx.Err(); err != nil {
		return provider.Record{}, err
	}

	id, err := p.zoneID()
	if err != nil {
		return provider.Record{}, err
	}

	resp, err := p.api.CreateDNSRecord(id, cf.DNSRecord{
		Type:    r.Type,
		Name:    dns.CanonicalName(r.Name),
		Content: r.Value,
		TTL:     r.TTL,
	})
	if err != nil {
		return provider.Record{}, errors.Wrapf(err, "cloudflare: create %s record at %s", r.Type, r.Name)
	}
	return fromAPI(resp.Result), nil
}

// DeleteRecord deletes the record with the given ID.
func (p *Provider) DeleteRecord(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	zone, err := p.zoneID()
	if err != nil {
		return err
	}

	if err := p.api.DeleteDNSRecord(zone, id); err != nil {
		return errors.Wrapf(err, "cloudflare: delete record %s", id)
	}
	return nil
}

// UpdateRecord applies the non-nil fields of u to the record and returns
// the updated record.
func (p *Provider) UpdateRecord(ctx context.Context, id string, u provider.Update) (provider.Record, error) {
	if err := ctx.Err(); err != nil {
		return provider.Record{}, err
	}

	zone, err := p.zoneID()
	if err != nil {
		return provider.Record{}, err
	}

	record, err := p.api.DNSRecord(zone, id)
	if err != nil {
		return provider.Record{}, errors.Wrapf(err, "cloudflare: fetch record %s", id)
	}

	if u.Proxied != nil {
		record.Proxied = *u.Proxied
	}

	if err := p.api.UpdateDNSRecord(zone, id, record); err != nil {
		return provider.Record{}, errors.Wrapf(err, "cloudflare: update record %s", id)
	}
	return fromAPI(record), nil
}

// fromAPI converts a Cloudflare record to a provider record.
func fromAPI(r cf.DNSRecord) provider.Record {
	return provider.Record{
		ID:      r.ID,
		Type:    r.Type,
		Name:    r.Name,
		Value:   r.Content,
		TTL:     r.TTL,
		Proxied: r.Proxied,
	}
}
