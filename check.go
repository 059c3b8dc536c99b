package dnscheck

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rulemailer/dnscheck/dns"
)

// Status classifies the outcome of one check category.
type Status string

const (
	// StatusPass means the record matches the target configuration.
	StatusPass Status = "pass"

	// StatusFail means a record exists but does not match.
	StatusFail Status = "fail"

	// StatusMissing means no relevant record was found. Lookup errors
	// (NXDOMAIN, SERVFAIL, timeouts) fold into this status.
	StatusMissing Status = "missing"
)

// RecordCheck is the outcome of one check category.
type RecordCheck struct {
	Status Status `json:"status"`

	// Expected is the value the target configuration requires.
	Expected string `json:"expected,omitempty"`

	// Actual holds the values found in DNS, when any.
	Actual []string `json:"actual,omitempty"`

	// ExistingRaw is the verbatim DMARC TXT value found during the DMARC
	// check, retained for analysis. Only set on the dmarc category.
	ExistingRaw string `json:"existing_raw,omitempty"`
}

// Checks groups the five check categories.
type Checks struct {
	NS    RecordCheck `json:"ns"`
	MX    RecordCheck `json:"mx"`
	SPF   RecordCheck `json:"spf"`
	DKIM  RecordCheck `json:"dkim"`
	DMARC RecordCheck `json:"dmarc"`
}

// CheckResult is the outcome of checking one domain.
type CheckResult struct {
	// ID is a unique identifier for this check run, for log correlation.
	ID string `json:"id"`

	Domain string `json:"domain"`

	// AllPassed is true iff the MX, SPF, DKIM and DMARC checks all pass.
	// The NS check is informational and does not participate.
	AllPassed bool `json:"all_passed"`

	Checks Checks `json:"checks"`

	Warnings []Warning `json:"warnings"`
}

// CheckerConfig contains configuration options for a Checker.
type CheckerConfig struct {
	// Resolver performs the DNS lookups.
	// Default: dns.NewStdResolver()
	Resolver dns.Resolver

	// Target is the configuration to verify against.
	// Default: DefaultTarget
	Target *Target

	// Logger receives debug logging for individual checks.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Checker verifies the DNS configuration of a domain against a Target.
// A Checker is safe for concurrent use.
type Checker struct {
	resolver dns.Resolver
	target   Target
	log      *slog.Logger
}

// NewChecker creates a Checker, applying CheckerConfig defaults.
func NewChecker(cfg CheckerConfig) *Checker {
	c := &Checker{
		resolver: cfg.Resolver,
		target:   DefaultTarget,
		log:      cfg.Logger,
	}
	if c.resolver == nil {
		c.resolver = dns.NewStdResolver()
	}
	if cfg.Target != nil {
		c.target = *cfg.Target
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Target returns the configuration the checker verifies against.
func (c *Checker) Target() Target {
	return c.target
}

// Check inspects live DNS for domain and classifies each required record.
// The input is normalized first, so email addresses and URLs are accepted.
//
// The five categories are checked concurrently. A lookup that errors is
// treated as "no records found", never as a hard failure; the only error
// Check returns is context cancellation.
func (c *Checker) Check(ctx context.Context, domain string) (*CheckResult, error) {
	domain = Normalize(domain)

	result := &CheckResult{
		ID:     newRunID(),
		Domain: domain,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Checks.NS = c.checkNS(gctx, domain)
		return nil
	})
	g.Go(func() error {
		result.Checks.MX = c.checkMX(gctx, domain)
		return nil
	})
	g.Go(func() error {
		result.Checks.SPF = c.checkSPF(gctx, domain)
		return nil
	})
	g.Go(func() error {
		result.Checks.DKIM = c.checkDKIM(gctx, domain)
		return nil
	})
	g.Go(func() error {
		result.Checks.DMARC = c.checkDMARC(gctx, domain)
		return nil
	})
	_ = g.Wait() // check goroutines never return errors

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.AllPassed = result.Checks.MX.Status == StatusPass &&
		result.Checks.SPF.Status == StatusPass &&
		result.Checks.DKIM.Status == StatusPass &&
		result.Checks.DMARC.Status == StatusPass

	// Warning derivation reads check outcomes, so it runs after them.
	result.Warnings = c.conflictWarnings(ctx, domain, &result.Checks)
	if raw := result.Checks.DMARC.ExistingRaw; raw != "" {
		result.Warnings = append(result.Warnings, dmarcWarnings(raw)...)
	}

	c.log.Debug("check complete",
		slog.String("check_id", result.ID),
		slog.String("domain", domain),
		slog.Bool("all_passed", result.AllPassed),
		slog.Int("warnings", len(result.Warnings)))

	return result, nil
}

// checkNS looks up the nameservers of the bare domain. Informational:
// the outcome is Pass or Missing, never Fail.
func (c *Checker) checkNS(ctx context.Context, domain string) RecordCheck {
	res, err := c.resolver.LookupNS(ctx, domain)
	if err != nil || len(res.Records) == 0 {
		return RecordCheck{Status: StatusMissing}
	}

	actual := make([]string, 0, len(res.Records))
	for _, ns := range res.Records {
		actual = append(actual, dns.CanonicalName(ns))
	}
	return RecordCheck{Status: StatusPass, Actual: actual}
}

// checkMX verifies the mail exchange of the sending subdomain. A direct MX
// answer matching the expected host passes; with no MX answer, a CNAME to
// the expected alias target also passes since the alias inherits the
// platform MX.
func (c *Checker) checkMX(ctx context.Context, domain string) RecordCheck {
	name := c.target.SendingName(domain)
	check := RecordCheck{Expected: c.target.MXHost}

	res, err := c.resolver.LookupMX(ctx, name)
	if err == nil && len(res.Records) > 0 {
		for _, mx := range res.Records {
			check.Actual = append(check.Actual, dns.CanonicalName(mx.Host))
		}
		for _, mx := range res.Records {
			if dns.EqualName(mx.Host, c.target.MXHost) {
				check.Status = StatusPass
				return check
			}
		}
		check.Status = StatusFail
		return check
	}

	cres, cerr := c.resolver.LookupCNAME(ctx, name)
	if cerr == nil && len(cres.Records) > 0 {
		for _, cname := range cres.Records {
			check.Actual = append(check.Actual, dns.CanonicalName(cname))
		}
		for _, cname := range cres.Records {
			if dns.EqualName(cname, c.target.CNAMETarget) {
				check.Status = StatusPass
				return check
			}
		}
		check.Status = StatusFail
		return check
	}

	check.Status = StatusMissing
	return check
}

// checkSPF verifies sender authorization for the sending subdomain. The
// expected CNAME alias passes outright (SPF inherited from the target);
// otherwise a domain-local v=spf1 TXT record must carry the platform's
// include token.
func (c *Checker) checkSPF(ctx context.Context, domain string) RecordCheck {
	name := c.target.SendingName(domain)
	check := RecordCheck{Expected: c.target.CNAMETarget}

	cres, cerr := c.resolver.LookupCNAME(ctx, name)
	if cerr == nil {
		for _, cname := range cres.Records {
			if dns.EqualName(cname, c.target.CNAMETarget) {
				check.Status = StatusPass
				check.Actual = []string{dns.CanonicalName(cname)}
				return check
			}
		}
	}

	tres, terr := c.resolver.LookupTXT(ctx, name)
	if terr == nil {
		for _, txt := range tres.Records {
			if !strings.HasPrefix(strings.TrimSpace(txt), "v=spf1") {
				continue
			}
			check.Actual = []string{txt}
			if strings.Contains(txt, c.target.SPFInclude) {
				check.Status = StatusPass
			} else {
				check.Status = StatusFail
			}
			return check
		}
	}

	check.Status = StatusMissing
	return check
}

// checkDKIM verifies the DKIM key alias.
func (c *Checker) checkDKIM(ctx context.Context, domain string) RecordCheck {
	name := c.target.DKIMName(domain)
	check := RecordCheck{Expected: c.target.DKIMTarget}

	res, err := c.resolver.LookupCNAME(ctx, name)
	if err != nil || len(res.Records) == 0 {
		check.Status = StatusMissing
		return check
	}

	for _, cname := range res.Records {
		check.Actual = append(check.Actual, dns.CanonicalName(cname))
	}
	for _, cname := range res.Records {
		if dns.EqualName(cname, c.target.DKIMTarget) {
			check.Status = StatusPass
			return check
		}
	}
	check.Status = StatusFail
	return check
}

// checkDMARC looks for an existing DMARC policy at the bare domain. Any
// v=DMARC1 record passes; its raw value is retained for analysis.
// Malformed values are ignored for pass/fail purposes.
func (c *Checker) checkDMARC(ctx context.Context, domain string) RecordCheck {
	name := c.target.DMARCLookupName(domain)
	check := RecordCheck{Expected: c.target.DMARCPolicy}

	res, err := c.resolver.LookupTXT(ctx, name)
	if err == nil {
		for _, txt := range res.Records {
			if strings.HasPrefix(strings.TrimSpace(txt), "v=DMARC1") {
				check.Status = StatusPass
				check.Actual = []string{txt}
				check.ExistingRaw = txt
				return check
			}
		}
	}

	check.Status = StatusMissing
	return check
}
