package dns

import (
	"context"
	"net"
	"slices"
)

// MockResolver is a Resolver used for testing.
// Set DNS records in the fields, which map FQDNs (with trailing dot) to values.
type MockResolver struct {
	NS    map[string][]string
	MX    map[string][]MX
	CNAME map[string][]string
	TXT   map[string][]string
	A     map[string][]string
	AAAA  map[string][]string

	// Fail contains records that will return a temporary error (SERVFAIL).
	// Format: "type name", e.g. "txt example.com." where type is lowercase.
	Fail []string

	// AllAuthentic sets the value for Authentic in responses.
	AllAuthentic bool
}

var _ Resolver = MockResolver{}

// ensureFQDN ensures the name ends with a dot.
func ensureFQDN(name string) string {
	if len(name) == 0 || name[len(name)-1] != '.' {
		return name + "."
	}
	return name
}

// mockReq represents a mock DNS request.
type mockReq struct {
	Type string // E.g. "ns", "mx", "cname", "txt", "a", "aaaa"
	Name string // FQDN with trailing dot
}

func (mr mockReq) String() string {
	return mr.Type + " " + mr.Name
}

// check validates the context and configured failures for one request.
func (r MockResolver) check(ctx context.Context, mr mockReq) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if slices.Contains(r.Fail, mr.String()) {
		return ErrDNSServFail
	}
	return nil
}

// LookupNS returns NS records for the given name.
func (r MockResolver) LookupNS(ctx context.Context, name string) (Result[string], error) {
	return r.lookupStrings(ctx, "ns", name, r.NS)
}

// LookupMX returns MX records for the given name.
func (r MockResolver) LookupMX(ctx context.Context, name string) (Result[MX], error) {
	fqdn := ensureFQDN(name)
	result := Result[MX]{Authentic: r.AllAuthentic}

	if err := r.check(ctx, mockReq{"mx", fqdn}); err != nil {
		return result, err
	}

	records, ok := r.MX[fqdn]
	if !ok || len(records) == 0 {
		return result, ErrDNSNotFound
	}

	result.Records = records
	return result, nil
}

// LookupCNAME returns CNAME targets for the given name.
func (r MockResolver) LookupCNAME(ctx context.Context, name string) (Result[string], error) {
	return r.lookupStrings(ctx, "cname", name, r.CNAME)
}

// LookupTXT returns TXT records for the given name.
func (r MockResolver) LookupTXT(ctx context.Context, name string) (Result[string], error) {
	return r.lookupStrings(ctx, "txt", name, r.TXT)
}

// LookupA returns A records for the given name.
func (r MockResolver) LookupA(ctx context.Context, name string) (Result[net.IP], error) {
	return r.lookupIPs(ctx, "a", name, r.A)
}

// LookupAAAA returns AAAA records for the given name.
func (r MockResolver) LookupAAAA(ctx context.Context, name string) (Result[net.IP], error) {
	return r.lookupIPs(ctx, "aaaa", name, r.AAAA)
}

func (r MockResolver) lookupStrings(ctx context.Context, qtype, name string, m map[string][]string) (Result[string], error) {
	fqdn := ensureFQDN(name)
	result := Result[string]{Authentic: r.AllAuthentic}

	if err := r.check(ctx, mockReq{qtype, fqdn}); err != nil {
		return result, err
	}

	records, ok := m[fqdn]
	if !ok || len(records) == 0 {
		return result, ErrDNSNotFound
	}

	result.Records = records
	return result, nil
}

func (r MockResolver) lookupIPs(ctx context.Context, qtype, name string, m map[string][]string) (Result[net.IP], error) {
	fqdn := ensureFQDN(name)
	result := Result[net.IP]{Authentic: r.AllAuthentic}

	if err := r.check(ctx, mockReq{qtype, fqdn}); err != nil {
		return result, err
	}

	var ips []net.IP
	for _, ip := range m[fqdn] {
		ips = append(ips, net.ParseIP(ip))
	}

	if len(ips) == 0 {
		return result, ErrDNSNotFound
	}

	result.Records = ips
	return result, nil
}
