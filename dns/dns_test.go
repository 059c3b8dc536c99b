package dns

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		isNotFound bool
		isTimeout  bool
		isServFail bool
		isTemp     bool
	}{
		{
			name:       "not found error",
			err:        ErrDNSNotFound,
			isNotFound: true,
		},
		{
			name:      "timeout error",
			err:       ErrDNSTimeout,
			isTimeout: true,
			isTemp:    true,
		},
		{
			name:       "server failure",
			err:        ErrDNSServFail,
			isServFail: true,
			isTemp:     true,
		},
		{
			name: "wrapped not found",
			err:  errors.New("wrapper: " + ErrDNSNotFound.Error()),
		},
		{
			name: "nil error",
			err:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.isNotFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.isNotFound)
			}
			if got := IsTimeout(tt.err); got != tt.isTimeout {
				t.Errorf("IsTimeout() = %v, want %v", got, tt.isTimeout)
			}
			if got := IsServFail(tt.err); got != tt.isServFail {
				t.Errorf("IsServFail() = %v, want %v", got, tt.isServFail)
			}
			if got := IsTemporary(tt.err); got != tt.isTemp {
				t.Errorf("IsTemporary() = %v, want %v", got, tt.isTemp)
			}
		})
	}
}

func TestEqualName(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"to.target.se", "to.target.se", true},
		{"to.target.se", "TO.TARGET.SE.", true},
		{"to.target.se.", "to.target.se", true},
		{" to.target.se ", "to.target.se", true},
		{"to.target.se", "other.target.se", false},
		{"", "", true},
		{".", "", true},
	}

	for _, tt := range tests {
		if got := EqualName(tt.a, tt.b); got != tt.want {
			t.Errorf("EqualName(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

// TestResolverInterface verifies that our types implement Resolver
func TestResolverInterface(t *testing.T) {
	var _ Resolver = (*DNSResolver)(nil)
	var _ Resolver = (*StdResolver)(nil)
}

func TestNewResolverDefaults(t *testing.T) {
	r := NewResolver(ResolverConfig{})

	// Should have default timeout
	if r.config.Timeout == 0 {
		t.Error("expected default timeout to be set")
	}

	// Should have default retries
	if r.config.Retries == 0 {
		t.Error("expected default retries to be set")
	}

	// Should have nameservers (either from system or fallback)
	if len(r.config.Nameservers) == 0 {
		t.Error("expected nameservers to be set")
	}
}

func TestMockResolverLookups(t *testing.T) {
	ctx := context.Background()
	mock := MockResolver{
		NS:    map[string][]string{"example.com.": {"ns1.example.net.", "ns2.example.net."}},
		MX:    map[string][]MX{"rm.example.com.": {{Host: "to.target.se.", Pref: 10}}},
		CNAME: map[string][]string{"rm.example.com.": {"to.target.se."}},
		TXT:   map[string][]string{"_dmarc.example.com.": {"v=DMARC1; p=none"}},
		A:     map[string][]string{"example.com.": {"192.0.2.1"}},
		Fail:  []string{"txt fail.example.com."},
	}

	ns, err := mock.LookupNS(ctx, "example.com")
	if err != nil || len(ns.Records) != 2 {
		t.Fatalf("LookupNS = %v, %v; want 2 records", ns.Records, err)
	}

	mx, err := mock.LookupMX(ctx, "rm.example.com")
	if err != nil || len(mx.Records) != 1 || mx.Records[0].Host != "to.target.se." {
		t.Fatalf("LookupMX = %v, %v", mx.Records, err)
	}

	cname, err := mock.LookupCNAME(ctx, "rm.example.com")
	if err != nil || len(cname.Records) != 1 {
		t.Fatalf("LookupCNAME = %v, %v", cname.Records, err)
	}

	if _, err := mock.LookupCNAME(ctx, "other.example.com"); !IsNotFound(err) {
		t.Errorf("expected ErrDNSNotFound for absent CNAME, got %v", err)
	}

	if _, err := mock.LookupTXT(ctx, "fail.example.com"); !IsServFail(err) {
		t.Errorf("expected ErrDNSServFail for configured failure, got %v", err)
	}

	a, err := mock.LookupA(ctx, "example.com")
	if err != nil || !a.Records[0].Equal(net.ParseIP("192.0.2.1")) {
		t.Fatalf("LookupA = %v, %v", a.Records, err)
	}

	if _, err := mock.LookupAAAA(ctx, "example.com"); !IsNotFound(err) {
		t.Errorf("expected ErrDNSNotFound for absent AAAA, got %v", err)
	}
}

func TestMockResolverContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := MockResolver{TXT: map[string][]string{"example.com.": {"x"}}}
	if _, err := mock.LookupTXT(ctx, "example.com"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
