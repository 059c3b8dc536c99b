// Package dns provides the DNS lookup abstraction used by the checker and
// provisioner. It defines the Resolver interface together with two
// implementations: DNSResolver (github.com/miekg/dns, with DNSSEC support)
// and StdResolver (the standard library net.Resolver). MockResolver is
// provided for tests.
//
// Lookups return a typed Result and a sentinel error. A name that does not
// exist (NXDOMAIN) or has no records of the requested type yields
// ErrDNSNotFound; callers that only care about presence can use IsNotFound
// to fold that case into "absent".
package dns

import (
	"context"
	"errors"
	"net"
	"strings"
)

// DNS lookup errors.
var (
	// ErrDNSNotFound indicates the name does not exist or has no records
	// of the requested type.
	ErrDNSNotFound = errors.New("dns: no such record")

	// ErrDNSServFail indicates the authoritative server failed (SERVFAIL).
	ErrDNSServFail = errors.New("dns: server failure")

	// ErrDNSTimeout indicates the query timed out.
	ErrDNSTimeout = errors.New("dns: query timeout")

	// ErrDNSRefused indicates the server refused the query.
	ErrDNSRefused = errors.New("dns: query refused")

	// ErrDNSBogus indicates DNSSEC validation failed upstream.
	ErrDNSBogus = errors.New("dns: dnssec validation failed")
)

// IsNotFound reports whether err means the record is absent (NXDOMAIN or
// an empty answer).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDNSNotFound)
}

// IsTimeout reports whether err is a DNS timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrDNSTimeout)
}

// IsServFail reports whether err is a server failure.
func IsServFail(err error) bool {
	return errors.Is(err, ErrDNSServFail)
}

// IsTemporary reports whether a retry may succeed.
func IsTemporary(err error) bool {
	return errors.Is(err, ErrDNSTimeout) || errors.Is(err, ErrDNSServFail)
}

// Result contains the records returned by a lookup.
type Result[T any] struct {
	// Records are the answer records, in server order.
	Records []T

	// Authentic indicates the response was DNSSEC-validated. Always false
	// for resolvers without DNSSEC support.
	Authentic bool
}

// MX is a single mail exchange answer.
type MX struct {
	// Host is the exchange hostname.
	Host string

	// Pref is the preference value; lower is preferred.
	Pref uint16
}

// Resolver is the interface for the DNS lookups required by mail-sending
// configuration checks. Implementations must be safe for concurrent use.
type Resolver interface {
	// LookupNS retrieves NS records for the given name.
	LookupNS(ctx context.Context, name string) (Result[string], error)

	// LookupMX retrieves MX records for the given name.
	LookupMX(ctx context.Context, name string) (Result[MX], error)

	// LookupCNAME retrieves the CNAME target for the given name.
	// Returns ErrDNSNotFound when the name has no CNAME record, even if
	// records of other types exist there.
	LookupCNAME(ctx context.Context, name string) (Result[string], error)

	// LookupTXT retrieves TXT records for the given name. Multi-chunk
	// strings are joined per RFC 7208 Section 3.3.
	LookupTXT(ctx context.Context, name string) (Result[string], error)

	// LookupA retrieves IPv4 addresses for the given name.
	LookupA(ctx context.Context, name string) (Result[net.IP], error)

	// LookupAAAA retrieves IPv6 addresses for the given name.
	LookupAAAA(ctx context.Context, name string) (Result[net.IP], error)
}

// EqualName reports whether two DNS names or record values are equivalent:
// comparison is case-insensitive and ignores a trailing dot, so
// "to.target.se" and "TO.TARGET.SE." compare equal.
func EqualName(a, b string) bool {
	return CanonicalName(a) == CanonicalName(b)
}

// CanonicalName returns the name lowercased with surrounding space and any
// trailing dot removed.
func CanonicalName(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}
