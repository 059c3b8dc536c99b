package dnscheck

import (
	"context"
	"strings"
	"testing"

	"github.com/rulemailer/dnscheck/dns"
)

func findWarnings(warnings []Warning, code string) []Warning {
	var out []Warning
	for _, w := range warnings {
		if w.Code == code {
			out = append(out, w)
		}
	}
	return out
}

func TestCheckAllMissing(t *testing.T) {
	checker := NewChecker(CheckerConfig{Resolver: dns.MockResolver{}})

	result, err := checker.Check(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if result.AllPassed {
		t.Error("AllPassed = true, want false")
	}
	for name, check := range map[string]RecordCheck{
		"NS":    result.Checks.NS,
		"MX":    result.Checks.MX,
		"SPF":   result.Checks.SPF,
		"DKIM":  result.Checks.DKIM,
		"DMARC": result.Checks.DMARC,
	} {
		if check.Status != StatusMissing {
			t.Errorf("%s status = %q, want %q", name, check.Status, StatusMissing)
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", result.Warnings)
	}
	if result.ID == "" {
		t.Error("ID is empty")
	}
}

func TestCheckAllPassed(t *testing.T) {
	resolver := dns.MockResolver{
		NS: map[string][]string{
			"example.com.": {"ns1.example-dns.net.", "ns2.example-dns.net."},
		},
		CNAME: map[string][]string{
			// Case and trailing dot must not matter.
			"rm.example.com.":               {"TO.RULEMAILER.SE."},
			"keyse._domainkey.example.com.": {"keyse._domainkey.rulemailer.se"},
		},
		TXT: map[string][]string{
			"_dmarc.example.com.": {"v=DMARC1; p=none; rua=mailto:reports@example.com"},
		},
	}
	checker := NewChecker(CheckerConfig{Resolver: resolver})

	result, err := checker.Check(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if !result.AllPassed {
		t.Errorf("AllPassed = false, want true; checks: %+v", result.Checks)
	}
	if got := result.Checks.NS.Status; got != StatusPass {
		t.Errorf("NS status = %q, want %q", got, StatusPass)
	}
	if got := result.Checks.DMARC.ExistingRaw; !strings.HasPrefix(got, "v=DMARC1") {
		t.Errorf("DMARC ExistingRaw = %q, want v=DMARC1 record", got)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", result.Warnings)
	}
}

func TestCheckNormalizesInput(t *testing.T) {
	checker := NewChecker(CheckerConfig{Resolver: dns.MockResolver{}})

	result, err := checker.Check(context.Background(), "John@Example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Domain != "example.com" {
		t.Errorf("Domain = %q, want %q", result.Domain, "example.com")
	}
}

func TestCheckMX(t *testing.T) {
	tests := []struct {
		name     string
		resolver dns.MockResolver
		want     Status
	}{
		{
			name: "direct MX match",
			resolver: dns.MockResolver{
				MX: map[string][]dns.MX{
					"rm.example.com.": {{Host: "TO.RULEMAILER.SE.", Pref: 10}},
				},
			},
			want: StatusPass,
		},
		{
			name: "direct MX mismatch",
			resolver: dns.MockResolver{
				MX: map[string][]dns.MX{
					"rm.example.com.": {{Host: "mail.other.net.", Pref: 10}},
				},
			},
			want: StatusFail,
		},
		{
			name: "CNAME fallback match",
			resolver: dns.MockResolver{
				CNAME: map[string][]string{
					"rm.example.com.": {"to.rulemailer.se."},
				},
			},
			want: StatusPass,
		},
		{
			name: "CNAME fallback mismatch",
			resolver: dns.MockResolver{
				CNAME: map[string][]string{
					"rm.example.com.": {"elsewhere.example.net."},
				},
			},
			want: StatusFail,
		},
		{
			name:     "nothing at the sending name",
			resolver: dns.MockResolver{},
			want:     StatusMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(CheckerConfig{Resolver: tt.resolver})
			result, err := checker.Check(context.Background(), "example.com")
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if got := result.Checks.MX.Status; got != tt.want {
				t.Errorf("MX status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckSPFViaTXT(t *testing.T) {
	tests := []struct {
		name string
		txt  string
		want Status
	}{
		{"include token present", "v=spf1 include:spf.rulemailer.se ~all", StatusPass},
		{"include token absent", "v=spf1 include:spf.other.net -all", StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := dns.MockResolver{
				TXT: map[string][]string{
					"rm.example.com.": {"some unrelated verification token", tt.txt},
				},
			}
			checker := NewChecker(CheckerConfig{Resolver: resolver})

			result, err := checker.Check(context.Background(), "example.com")
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if got := result.Checks.SPF.Status; got != tt.want {
				t.Errorf("SPF status = %q, want %q", got, tt.want)
			}

			// A TXT record at the sending name still blocks the CNAME.
			if got := findWarnings(result.Warnings, WarningCNAMEConflictMXSPF); len(got) != 1 {
				t.Errorf("CNAME_CONFLICT_MX_SPF warnings = %d, want 1", len(got))
			}
		})
	}
}

func TestCheckDKIMMismatch(t *testing.T) {
	resolver := dns.MockResolver{
		CNAME: map[string][]string{
			"keyse._domainkey.example.com.": {"keyse._domainkey.other.net."},
		},
	}
	checker := NewChecker(CheckerConfig{Resolver: resolver})

	result, err := checker.Check(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := result.Checks.DKIM.Status; got != StatusFail {
		t.Errorf("DKIM status = %q, want %q", got, StatusFail)
	}
}

func TestCheckDKIMTXTConflict(t *testing.T) {
	resolver := dns.MockResolver{
		TXT: map[string][]string{
			"keyse._domainkey.example.com.": {"v=DKIM1; k=rsa; p=MIGfMA0G"},
		},
	}
	checker := NewChecker(CheckerConfig{Resolver: resolver})

	result, err := checker.Check(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := result.Checks.DKIM.Status; got != StatusMissing {
		t.Errorf("DKIM status = %q, want %q", got, StatusMissing)
	}
	if got := findWarnings(result.Warnings, WarningCNAMEConflictDKIM); len(got) != 1 {
		t.Fatalf("CNAME_CONFLICT_DKIM warnings = %d, want 1", len(got))
	}
	if sev := findWarnings(result.Warnings, WarningCNAMEConflictDKIM)[0].Severity; sev != SeverityError {
		t.Errorf("severity = %q, want %q", sev, SeverityError)
	}
}

func TestCheckLookupErrorsFoldToMissing(t *testing.T) {
	resolver := dns.MockResolver{
		Fail: []string{
			"ns example.com.",
			"mx rm.example.com.",
			"cname rm.example.com.",
			"txt rm.example.com.",
			"a rm.example.com.",
			"aaaa rm.example.com.",
			"cname keyse._domainkey.example.com.",
			"txt keyse._domainkey.example.com.",
			"txt _dmarc.example.com.",
		},
	}
	checker := NewChecker(CheckerConfig{Resolver: resolver})

	result, err := checker.Check(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	for name, check := range map[string]RecordCheck{
		"NS":    result.Checks.NS,
		"MX":    result.Checks.MX,
		"SPF":   result.Checks.SPF,
		"DKIM":  result.Checks.DKIM,
		"DMARC": result.Checks.DMARC,
	} {
		if check.Status != StatusMissing {
			t.Errorf("%s status = %q, want %q", name, check.Status, StatusMissing)
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", result.Warnings)
	}
}

func TestCheckCloudflareProxy(t *testing.T) {
	resolver := dns.MockResolver{
		NS: map[string][]string{
			"example.com.": {"abby.ns.cloudflare.com.", "rudy.ns.cloudflare.com."},
		},
		A: map[string][]string{
			"rm.example.com.":               {"104.21.5.5"},
			"keyse._domainkey.example.com.": {"104.21.5.6"},
		},
	}
	checker := NewChecker(CheckerConfig{Resolver: resolver})

	result, err := checker.Check(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	proxy := findWarnings(result.Warnings, WarningCloudflareProxy)
	if len(proxy) != 1 {
		t.Fatalf("CLOUDFLARE_PROXY_ENABLED warnings = %d, want exactly 1", len(proxy))
	}
	for _, name := range []string{"rm.example.com", "keyse._domainkey.example.com"} {
		if !strings.Contains(proxy[0].Message, name) {
			t.Errorf("proxy warning message %q does not name %s", proxy[0].Message, name)
		}
	}
	if proxy[0].Severity != SeverityError {
		t.Errorf("severity = %q, want %q", proxy[0].Severity, SeverityError)
	}

	// The A record at the sending name also blocks the CNAME.
	if got := findWarnings(result.Warnings, WarningCNAMEConflictMXSPF); len(got) != 1 {
		t.Errorf("CNAME_CONFLICT_MX_SPF warnings = %d, want 1", len(got))
	}
}

func TestCheckNoProxyWarningWithoutCloudflare(t *testing.T) {
	resolver := dns.MockResolver{
		NS: map[string][]string{
			"example.com.": {"ns1.example-dns.net."},
		},
		A: map[string][]string{
			"rm.example.com.": {"192.0.2.10"},
		},
	}
	checker := NewChecker(CheckerConfig{Resolver: resolver})

	result, err := checker.Check(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := findWarnings(result.Warnings, WarningCloudflareProxy); len(got) != 0 {
		t.Errorf("CLOUDFLARE_PROXY_ENABLED warnings = %d, want 0", len(got))
	}
}

func TestCheckDMARCAnalysis(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCodes map[string]Severity
		inMessage map[string][]string
	}{
		{
			name: "strict reject policy",
			raw:  "v=DMARC1; p=reject; aspf=s; adkim=s",
			wantCodes: map[string]Severity{
				WarningStrictSPFAlignment:  SeverityWarning,
				WarningStrictDKIMAlignment: SeverityInfo,
				WarningExistingDMARCPolicy: SeverityInfo,
			},
			inMessage: map[string][]string{
				WarningExistingDMARCPolicy: {"p=reject", "rejected"},
			},
		},
		{
			name: "quarantine policy",
			raw:  "v=DMARC1; p=quarantine; rua=mailto:agg@example.com",
			wantCodes: map[string]Severity{
				WarningExistingDMARCPolicy: SeverityInfo,
			},
			inMessage: map[string][]string{
				WarningExistingDMARCPolicy: {"p=quarantine", "quarantined"},
			},
		},
		{
			name:      "relaxed none policy",
			raw:       "v=DMARC1; p=none; rua=mailto:agg@example.com",
			wantCodes: map[string]Severity{},
		},
		{
			name:      "unparseable record",
			raw:       "v=DMARC1; p=banana",
			wantCodes: map[string]Severity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := dns.MockResolver{
				TXT: map[string][]string{
					"_dmarc.example.com.": {tt.raw},
				},
			}
			checker := NewChecker(CheckerConfig{Resolver: resolver})

			result, err := checker.Check(context.Background(), "example.com")
			if err != nil {
				t.Fatalf("Check: %v", err)
			}

			// Any v=DMARC1 record passes the check, even an unparseable one.
			if got := result.Checks.DMARC.Status; got != StatusPass {
				t.Errorf("DMARC status = %q, want %q", got, StatusPass)
			}

			if len(result.Warnings) != len(tt.wantCodes) {
				t.Errorf("warnings = %v, want %d of them", result.Warnings, len(tt.wantCodes))
			}
			for code, severity := range tt.wantCodes {
				found := findWarnings(result.Warnings, code)
				if len(found) != 1 {
					t.Errorf("%s warnings = %d, want 1", code, len(found))
					continue
				}
				if found[0].Severity != severity {
					t.Errorf("%s severity = %q, want %q", code, found[0].Severity, severity)
				}
				for _, substr := range tt.inMessage[code] {
					if !strings.Contains(found[0].Message, substr) {
						t.Errorf("%s message %q does not contain %q", code, found[0].Message, substr)
					}
				}
			}
		})
	}
}

func TestCheckContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := NewChecker(CheckerConfig{Resolver: dns.MockResolver{}})
	if _, err := checker.Check(ctx, "example.com"); err == nil {
		t.Fatal("Check with canceled context returned nil error")
	}
}
