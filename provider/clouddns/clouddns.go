// Package clouddns adapts Google Cloud DNS to the provider interface.
//
// Cloud DNS stores record sets rather than individual records and assigns
// them no identifiers, so this adapter synthesizes IDs of the form
// "name|type|rrdata" and translates deletes into set replacements.
package clouddns

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	gdns "google.golang.org/api/dns/v1"
	"google.golang.org/api/option"

	"github.com/rulemailer/dnscheck/dns"
	"github.com/rulemailer/dnscheck/provider"
)

// Config contains the credentials and zone for one Cloud DNS adapter.
type Config struct {
	// Project is the Google Cloud project holding the managed zone.
	Project string

	// ServiceAccountFile is the path to a service account JSON key with
	// the Cloud DNS read/write scope.
	ServiceAccountFile string

	// Zone is the zone name (registered domain) the records live in.
	Zone string
}

// Provider is a Google Cloud DNS-backed DNS provider.
type Provider struct {
	project string
	zone    string
	service *gdns.Service
	zones   provider.ZoneCache
}

var _ provider.Provider = (*Provider)(nil)

// New creates a Cloud DNS provider for the configured zone.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	key, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		return nil, errors.Wrap(err, "clouddns: read service account file")
	}

	conf, err := google.JWTConfigFromJSON(key, gdns.NdevClouddnsReadwriteScope)
	if err != nil {
		return nil, errors.Wrap(err, "clouddns: parse service account key")
	}

	service, err := gdns.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, errors.Wrap(err, "clouddns: create service")
	}

	return &Provider{
		project: cfg.Project,
		zone:    dns.CanonicalName(cfg.Zone),
		service: service,
	}, nil
}

// managedZone resolves and memoizes the managed-zone name for the
// configured zone. Concurrent callers share a single list request.
func (p *Provider) managedZone(ctx context.Context) (string, error) {
	return p.zones.ID(p.zone, func() (string, error) {
		zones, err := p.service.ManagedZones.List(p.project).Context(ctx).Do()
		if err != nil {
			return "", errors.Wrap(err, "clouddns: list managed zones")
		}
		for _, zone := range zones.ManagedZones {
			if dns.EqualName(zone.DnsName, p.zone) {
				return zone.Name, nil
			}
		}
		return "", errors.Errorf("clouddns: no managed zone for %s", p.zone)
	})
}

// Records returns all records at the given name, one per rrdata.
func (p *Provider) Records(ctx context.Context, name string) ([]provider.Record, error) {
	zone, err := p.managedZone(ctx)
	if err != nil {
		return nil, err
	}

	sets, err := p.service.ResourceRecordSets.List(p.project, zone).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "clouddns: list record sets at %s", name)
	}

	var out []provider.Record
	for _, set := range sets.Rrsets {
		if !dns.EqualName(set.Name, name) {
			continue
		}
		for _, rrdata := range set.Rrdatas {
			out = append(out, provider.Record{
				ID:    recordID(set.Name, set.Type, rrdata),
				Type:  set.Type,
				Name:  dns.CanonicalName(set.Name),
				Value: unquote(set.Type, rrdata),
				TTL:   int(set.Ttl),
			})
		}
	}
	return out, nil
}

// CreateRecord creates a record, merging into an existing set of the same
// name and type when one exists.
func (p *Provider) CreateRecord(ctx context.Context, r provider.Record) (provider.Record, error) {
	zone, err := p.managedZone(ctx)
	if err != nil {
		return provider.Record{}, err
	}

	rrdata := quote(r.Type, r.Value)
	ttl := int64(r.TTL)
	if ttl == 0 {
		ttl = 300
	}

	change := &gdns.Change{
		Additions: []*gdns.ResourceRecordSet{{
			Name:    fqdn(r.Name),
			Type:    r.Type,
			Ttl:     ttl,
			Rrdatas: []string{rrdata},
		}},
	}

	existing, err := p.findSet(ctx, zone, r.Name, r.Type)
	if err != nil {
		return provider.Record{}, err
	}
	if existing != nil {
		change.Deletions = []*gdns.ResourceRecordSet{existing}
		change.Additions[0].Ttl = existing.Ttl
		change.Additions[0].Rrdatas = append(append([]string{}, existing.Rrdatas...), rrdata)
	}

	if err := p.apply(ctx, zone, change); err != nil {
		return provider.Record{}, errors.Wrapf(err, "clouddns: create %s record at %s", r.Type, r.Name)
	}

	r.ID = recordID(fqdn(r.Name), r.Type, rrdata)
	return r, nil
}

// DeleteRecord deletes one rrdata, replacing the containing set when
// other rrdatas remain.
func (p *Provider) DeleteRecord(ctx context.Context, id string) error {
	name, typ, rrdata, ok := parseRecordID(id)
	if !ok {
		return errors.Errorf("clouddns: malformed record id %q", id)
	}

	zone, err := p.managedZone(ctx)
	if err != nil {
		return err
	}

	existing, err := p.findSet(ctx, zone, name, typ)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.Errorf("clouddns: no %s record set at %s", typ, name)
	}

	change := &gdns.Change{Deletions: []*gdns.ResourceRecordSet{existing}}

	var remaining []string
	for _, d := range existing.Rrdatas {
		if d != rrdata {
			remaining = append(remaining, d)
		}
	}
	if len(remaining) > 0 {
		change.Additions = []*gdns.ResourceRecordSet{{
			Name:    existing.Name,
			Type:    existing.Type,
			Ttl:     existing.Ttl,
			Rrdatas: remaining,
		}}
	}

	if err := p.apply(ctx, zone, change); err != nil {
		return errors.Wrapf(err, "clouddns: delete record %s", id)
	}
	return nil
}

// findSet returns the record set at name with the given type, or nil.
func (p *Provider) findSet(ctx context.Context, zone, name, typ string) (*gdns.ResourceRecordSet, error) {
	sets, err := p.service.ResourceRecordSets.List(p.project, zone).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "clouddns: list record sets")
	}
	for _, set := range sets.Rrsets {
		if dns.EqualName(set.Name, name) && strings.EqualFold(set.Type, typ) {
			return set, nil
		}
	}
	return nil, nil
}

// apply submits a change and waits for it to leave the pending state.
func (p *Provider) apply(ctx context.Context, zone string, change *gdns.Change) error {
	chg, err := p.service.Changes.Create(p.project, zone, change).Context(ctx).Do()
	if err != nil {
		return err
	}
	for chg.Status == "pending" {
		if err := ctx.Err(); err != nil {
			return err
		}
		chg, err = p.service.Changes.Get(p.project, zone, chg.Id).Context(ctx).Do()
		if err != nil {
			return err
		}
	}
	return nil
}

func recordID(name, typ, rrdata string) string {
	return dns.CanonicalName(name) + "|" + typ + "|" + rrdata
}

func parseRecordID(id string) (name, typ, rrdata string, ok bool) {
	parts := strings.SplitN(id, "|", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// fqdn appends the trailing dot Cloud DNS requires on record names.
func fqdn(name string) string {
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

// quote wraps TXT values in the quotes Cloud DNS stores them with, and
// appends the trailing dot CNAME targets need.
func quote(typ, value string) string {
	switch strings.ToUpper(typ) {
	case "TXT":
		if !strings.HasPrefix(value, `"`) {
			return `"` + value + `"`
		}
	case "CNAME":
		return fqdn(value)
	}
	return value
}

// unquote reverses quote for values read back from the API.
func unquote(typ, rrdata string) string {
	if strings.ToUpper(typ) == "TXT" {
		return strings.Trim(rrdata, `"`)
	}
	return rrdata
}
