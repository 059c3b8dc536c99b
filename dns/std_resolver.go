package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// StdResolver implements the Resolver interface using the standard library net package.
// This resolver does not support DNSSEC validation (Authentic will always be false).
// Use DNSResolver for DNSSEC support.
type StdResolver struct {
	resolver *net.Resolver
}

// NewStdResolver creates a resolver using the standard library.
// This is useful when DNSSEC validation is not required.
func NewStdResolver() *StdResolver {
	return &StdResolver{
		resolver: net.DefaultResolver,
	}
}

// NewStdResolverWithDialer creates a resolver using a custom dialer.
// This allows configuring custom DNS servers while using the stdlib interface.
func NewStdResolverWithDialer(dial func(ctx context.Context, network, address string) (net.Conn, error)) *StdResolver {
	return &StdResolver{
		resolver: &net.Resolver{
			PreferGo: true,
			Dial:     dial,
		},
	}
}

// LookupNS retrieves NS records using the standard library.
func (r *StdResolver) LookupNS(ctx context.Context, name string) (Result[string], error) {
	name = strings.TrimSuffix(name, ".")

	nss, err := r.resolver.LookupNS(ctx, name)
	if err != nil {
		return Result[string]{}, convertError(err)
	}

	if len(nss) == 0 {
		return Result[string]{}, ErrDNSNotFound
	}

	records := make([]string, 0, len(nss))
	for _, ns := range nss {
		records = append(records, ns.Host)
	}

	return Result[string]{Records: records}, nil
}

// LookupMX retrieves MX records using the standard library.
func (r *StdResolver) LookupMX(ctx context.Context, name string) (Result[MX], error) {
	name = strings.TrimSuffix(name, ".")

	mxs, err := r.resolver.LookupMX(ctx, name)
	if err != nil {
		return Result[MX]{}, convertError(err)
	}

	if len(mxs) == 0 {
		return Result[MX]{}, ErrDNSNotFound
	}

	records := make([]MX, 0, len(mxs))
	for _, mx := range mxs {
		records = append(records, MX{Host: mx.Host, Pref: mx.Pref})
	}

	return Result[MX]{Records: records}, nil
}

// LookupCNAME retrieves the CNAME target using the standard library.
// net.Resolver.LookupCNAME returns the canonical name of the queried name,
// which is the name itself when no alias exists; that case is reported as
// ErrDNSNotFound to match the Resolver contract.
func (r *StdResolver) LookupCNAME(ctx context.Context, name string) (Result[string], error) {
	name = strings.TrimSuffix(name, ".")

	cname, err := r.resolver.LookupCNAME(ctx, name)
	if err != nil {
		return Result[string]{}, convertError(err)
	}

	if cname == "" || EqualName(cname, name) {
		return Result[string]{}, ErrDNSNotFound
	}

	return Result[string]{Records: []string{cname}}, nil
}

// LookupTXT retrieves TXT records using the standard library.
func (r *StdResolver) LookupTXT(ctx context.Context, name string) (Result[string], error) {
	name = strings.TrimSuffix(name, ".")

	records, err := r.resolver.LookupTXT(ctx, name)
	if err != nil {
		return Result[string]{}, convertError(err)
	}

	if len(records) == 0 {
		return Result[string]{}, ErrDNSNotFound
	}

	return Result[string]{Records: records}, nil
}

// LookupA retrieves IPv4 addresses using the standard library.
func (r *StdResolver) LookupA(ctx context.Context, name string) (Result[net.IP], error) {
	return r.lookupIP(ctx, "ip4", name)
}

// LookupAAAA retrieves IPv6 addresses using the standard library.
func (r *StdResolver) LookupAAAA(ctx context.Context, name string) (Result[net.IP], error) {
	return r.lookupIP(ctx, "ip6", name)
}

func (r *StdResolver) lookupIP(ctx context.Context, network, name string) (Result[net.IP], error) {
	name = strings.TrimSuffix(name, ".")

	ips, err := r.resolver.LookupIP(ctx, network, name)
	if err != nil {
		return Result[net.IP]{}, convertError(err)
	}

	if len(ips) == 0 {
		return Result[net.IP]{}, ErrDNSNotFound
	}

	return Result[net.IP]{Records: ips}, nil
}

// convertError converts standard library DNS errors to package errors.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return ErrDNSNotFound
		}
		if dnsErr.IsTimeout {
			return ErrDNSTimeout
		}
		if dnsErr.IsTemporary {
			return ErrDNSServFail
		}
	}

	return fmt.Errorf("dns lookup failed: %w", err)
}
