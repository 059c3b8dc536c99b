// Package rfc2136 adapts any nameserver accepting RFC 2136 dynamic
// updates to the provider interface, authenticated with TSIG.
//
// Plain DNS has no record identifiers, so this adapter uses the records'
// presentation format (zone-file syntax) as IDs and reconstructs the RR
// from the ID when deleting.
package rfc2136

import (
	"context"
	"fmt"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
	"github.com/pkg/errors"

	"github.com/rulemailer/dnscheck/dns"
	"github.com/rulemailer/dnscheck/provider"
)

// queryTypes are the record types the provisioner cares about.
var queryTypes = []uint16{
	mdns.TypeCNAME,
	mdns.TypeTXT,
	mdns.TypeA,
	mdns.TypeAAAA,
	mdns.TypeMX,
}

// Config contains the server, zone and TSIG credentials for one adapter.
type Config struct {
	// Server is the nameserver address accepting updates, host:port.
	Server string

	// Zone is the zone the records live in.
	Zone string

	// TSIGName is the TSIG key name.
	TSIGName string

	// TSIGSecret is the base64 TSIG shared secret.
	TSIGSecret string

	// TSIGAlgorithm is the TSIG algorithm, e.g. "hmac-sha256.".
	// Default: hmac-sha256.
	TSIGAlgorithm string

	// Timeout is the per-exchange timeout. Default is 5 seconds.
	Timeout time.Duration
}

// Provider is an RFC 2136 dynamic-update DNS provider.
type Provider struct {
	cfg    Config
	client *mdns.Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates an RFC 2136 provider for the configured zone.
func New(cfg Config) *Provider {
	if cfg.TSIGAlgorithm == "" {
		cfg.TSIGAlgorithm = mdns.HmacSHA256
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Provider{
		cfg: cfg,
		client: &mdns.Client{
			Net:        "tcp",
			Timeout:    cfg.Timeout,
			TsigSecret: map[string]string{mdns.Fqdn(cfg.TSIGName): cfg.TSIGSecret},
		},
	}
}

// Records queries the server for each supported type at the given name.
func (p *Provider) Records(ctx context.Context, name string) ([]provider.Record, error) {
	var out []provider.Record
	for _, qtype := range queryTypes {
		m := new(mdns.Msg)
		m.SetQuestion(mdns.Fqdn(name), qtype)

		in, _, err := p.client.ExchangeContext(ctx, m, p.cfg.Server)
		if err != nil {
			return nil, errors.Wrapf(err, "rfc2136: query %s at %s", mdns.TypeToString[qtype], name)
		}
		if in.Rcode == mdns.RcodeNameError {
			continue
		}
		if in.Rcode != mdns.RcodeSuccess {
			return nil, errors.Errorf("rfc2136: query %s at %s: rcode %s",
				mdns.TypeToString[qtype], name, mdns.RcodeToString[in.Rcode])
		}

		for _, rr := range in.Answer {
			if rr.Header().Rrtype != qtype || !dns.EqualName(rr.Header().Name, name) {
				continue
			}
			out = append(out, fromRR(rr))
		}
	}
	return out, nil
}

// CreateRecord inserts a record via dynamic update.
func (p *Provider) CreateRecord(ctx context.Context, r provider.Record) (provider.Record, error) {
	ttl := r.TTL
	if ttl == 0 {
		ttl = 300
	}

	rr, err := mdns.NewRR(fmt.Sprintf("%s %d IN %s %s",
		mdns.Fqdn(r.Name), ttl, strings.ToUpper(r.Type), rrValue(r.Type, r.Value)))
	if err != nil {
		return provider.Record{}, errors.Wrapf(err, "rfc2136: build %s record at %s", r.Type, r.Name)
	}

	m := new(mdns.Msg)
	m.SetUpdate(mdns.Fqdn(p.cfg.Zone))
	m.Insert([]mdns.RR{rr})

	if err := p.exchange(ctx, m); err != nil {
		return provider.Record{}, errors.Wrapf(err, "rfc2136: create %s record at %s", r.Type, r.Name)
	}
	return fromRR(rr), nil
}

// DeleteRecord removes the record whose presentation format is id.
func (p *Provider) DeleteRecord(ctx context.Context, id string) error {
	rr, err := mdns.NewRR(id)
	if err != nil {
		return errors.Wrapf(err, "rfc2136: malformed record id %q", id)
	}

	m := new(mdns.Msg)
	m.SetUpdate(mdns.Fqdn(p.cfg.Zone))
	m.Remove([]mdns.RR{rr})

	if err := p.exchange(ctx, m); err != nil {
		return errors.Wrapf(err, "rfc2136: delete record %q", id)
	}
	return nil
}

// exchange signs and sends an update message.
func (p *Provider) exchange(ctx context.Context, m *mdns.Msg) error {
	m.SetTsig(mdns.Fqdn(p.cfg.TSIGName), p.cfg.TSIGAlgorithm, 300, time.Now().Unix())

	in, _, err := p.client.ExchangeContext(ctx, m, p.cfg.Server)
	if err != nil {
		return err
	}
	if in.Rcode != mdns.RcodeSuccess {
		return errors.Errorf("rcode %s", mdns.RcodeToString[in.Rcode])
	}
	return nil
}

// fromRR converts an answer RR to a provider record.
func fromRR(rr mdns.RR) provider.Record {
	rec := provider.Record{
		ID:   rr.String(),
		Type: mdns.TypeToString[rr.Header().Rrtype],
		Name: dns.CanonicalName(rr.Header().Name),
		TTL:  int(rr.Header().Ttl),
	}

	switch v := rr.(type) {
	case *mdns.CNAME:
		rec.Value = dns.CanonicalName(v.Target)
	case *mdns.TXT:
		rec.Value = strings.Join(v.Txt, "")
	case *mdns.A:
		rec.Value = v.A.String()
	case *mdns.AAAA:
		rec.Value = v.AAAA.String()
	case *mdns.MX:
		rec.Value = fmt.Sprintf("%d %s", v.Preference, dns.CanonicalName(v.Mx))
	default:
		rec.Value = strings.TrimSpace(strings.TrimPrefix(rr.String(), rr.Header().String()))
	}
	return rec
}

// rrValue renders a value in presentation format: TXT strings need
// quoting, CNAME targets need the trailing dot.
func rrValue(typ, value string) string {
	switch strings.ToUpper(typ) {
	case "TXT":
		return fmt.Sprintf("%q", value)
	case "CNAME":
		return mdns.Fqdn(value)
	}
	return value
}
