package dnscheck

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rulemailer/dnscheck/dmarc"
	"github.com/rulemailer/dnscheck/dns"
)

// Severity grades a warning.
type Severity string

const (
	// SeverityError marks configuration that will break provisioning or
	// delivery and needs action.
	SeverityError Severity = "error"

	// SeverityWarning marks configuration that may degrade delivery.
	SeverityWarning Severity = "warning"

	// SeverityInfo marks existing configuration worth knowing about.
	SeverityInfo Severity = "info"
)

// Warning codes. The set is closed and each code has a fixed severity.
const (
	// WarningCNAMEConflictMXSPF: records of another type occupy the
	// sending subdomain, so the required CNAME cannot be created there.
	WarningCNAMEConflictMXSPF = "CNAME_CONFLICT_MX_SPF"

	// WarningCNAMEConflictDKIM: a TXT record occupies the DKIM name.
	WarningCNAMEConflictDKIM = "CNAME_CONFLICT_DKIM"

	// WarningCloudflareProxy: Cloudflare serves proxied A records for
	// subdomains that should be plain CNAMEs.
	WarningCloudflareProxy = "CLOUDFLARE_PROXY_ENABLED"

	// WarningStrictSPFAlignment: existing DMARC record demands strict
	// SPF alignment.
	WarningStrictSPFAlignment = "STRICT_SPF_ALIGNMENT"

	// WarningStrictDKIMAlignment: existing DMARC record demands strict
	// DKIM alignment.
	WarningStrictDKIMAlignment = "STRICT_DKIM_ALIGNMENT"

	// WarningExistingDMARCPolicy: existing DMARC record already enforces
	// a quarantine or reject policy.
	WarningExistingDMARCPolicy = "EXISTING_DMARC_POLICY"
)

// Warning is a structured diagnostic about existing or conflicting DNS
// configuration. Warnings never change check statuses.
type Warning struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// cloudflareNSSuffix identifies Cloudflare-hosted zones by nameserver.
const cloudflareNSSuffix = ".ns.cloudflare.com"

// conflictWarnings probes for records that would collide with the required
// CNAMEs and for Cloudflare-proxied subdomains. It runs after the five
// checks and reads their outcomes; all existence probes are issued
// concurrently. Lookup failures count as absence, like everywhere else in
// the checker.
func (c *Checker) conflictWarnings(ctx context.Context, domain string, checks *Checks) []Warning {
	sendingName := c.target.SendingName(domain)
	dkimName := c.target.DKIMName(domain)

	var (
		sendingCNAME, dkimCNAME bool
		sendingA, sendingAAAA   bool
		sendingTXT, sendingMX   bool
		dkimTXT, dkimA          bool
	)

	probe := func(dst *bool, lookup func() (int, error)) func() error {
		return func() error {
			n, err := lookup()
			*dst = err == nil && n > 0
			return nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(probe(&sendingCNAME, func() (int, error) {
		res, err := c.resolver.LookupCNAME(gctx, sendingName)
		return len(res.Records), err
	}))
	g.Go(probe(&sendingA, func() (int, error) {
		res, err := c.resolver.LookupA(gctx, sendingName)
		return len(res.Records), err
	}))
	g.Go(probe(&sendingAAAA, func() (int, error) {
		res, err := c.resolver.LookupAAAA(gctx, sendingName)
		return len(res.Records), err
	}))
	g.Go(probe(&sendingTXT, func() (int, error) {
		res, err := c.resolver.LookupTXT(gctx, sendingName)
		return len(res.Records), err
	}))
	g.Go(probe(&sendingMX, func() (int, error) {
		res, err := c.resolver.LookupMX(gctx, sendingName)
		return len(res.Records), err
	}))
	g.Go(probe(&dkimCNAME, func() (int, error) {
		res, err := c.resolver.LookupCNAME(gctx, dkimName)
		return len(res.Records), err
	}))
	g.Go(probe(&dkimTXT, func() (int, error) {
		res, err := c.resolver.LookupTXT(gctx, dkimName)
		return len(res.Records), err
	}))

	cloudflare := checks.NS.Status == StatusPass && anyCloudflare(checks.NS.Actual)
	if cloudflare && checks.DKIM.Status != StatusPass {
		g.Go(probe(&dkimA, func() (int, error) {
			res, err := c.resolver.LookupA(gctx, dkimName)
			return len(res.Records), err
		}))
	}

	_ = g.Wait() // probes never return errors

	var warnings []Warning

	if !sendingCNAME {
		var types []string
		if sendingA {
			types = append(types, "A")
		}
		if sendingAAAA {
			types = append(types, "AAAA")
		}
		if sendingTXT {
			types = append(types, "TXT")
		}
		if sendingMX {
			types = append(types, "MX")
		}
		if len(types) > 0 {
			warnings = append(warnings, Warning{
				Code:     WarningCNAMEConflictMXSPF,
				Severity: SeverityError,
				Message: fmt.Sprintf(
					"%s has existing %s records; a CNAME cannot coexist with other record types at the same name, remove them before provisioning",
					sendingName, strings.Join(types, "/")),
			})
		}
	}

	if !dkimCNAME && dkimTXT {
		warnings = append(warnings, Warning{
			Code:     WarningCNAMEConflictDKIM,
			Severity: SeverityError,
			Message: fmt.Sprintf(
				"%s has an existing TXT record; it conflicts with the required DKIM CNAME and must be removed",
				dkimName),
		})
	}

	if cloudflare {
		var proxied []string
		if (checks.MX.Status != StatusPass || checks.SPF.Status != StatusPass) && sendingA {
			proxied = append(proxied, sendingName)
		}
		if checks.DKIM.Status != StatusPass && dkimA {
			proxied = append(proxied, dkimName)
		}
		if len(proxied) > 0 {
			warnings = append(warnings, Warning{
				Code:     WarningCloudflareProxy,
				Severity: SeverityError,
				Message: fmt.Sprintf(
					"Cloudflare proxying appears to be enabled for %s; proxied names resolve to Cloudflare addresses and hide the required CNAME targets, disable the proxy for these names",
					strings.Join(proxied, ", ")),
			})
		}
	}

	return warnings
}

// anyCloudflare reports whether any nameserver is a Cloudflare one.
func anyCloudflare(nameservers []string) bool {
	for _, ns := range nameservers {
		if strings.HasSuffix(dns.CanonicalName(ns), cloudflareNSSuffix) {
			return true
		}
	}
	return false
}

// dmarcWarnings analyzes an existing DMARC record captured during the
// DMARC check. Unparseable input yields no warnings.
func dmarcWarnings(raw string) []Warning {
	record, ok := dmarc.Parse(raw)
	if !ok {
		return nil
	}

	var warnings []Warning

	if record.ASPF == dmarc.AlignStrict {
		warnings = append(warnings, Warning{
			Code:     WarningStrictSPFAlignment,
			Severity: SeverityWarning,
			Message:  "existing DMARC record sets aspf=s (strict SPF alignment); mail sent from the sending subdomain will not SPF-align with the bare domain",
		})
	}

	if record.ADKIM == dmarc.AlignStrict {
		warnings = append(warnings, Warning{
			Code:     WarningStrictDKIMAlignment,
			Severity: SeverityInfo,
			Message:  "existing DMARC record sets adkim=s (strict DKIM alignment)",
		})
	}

	if record.IsEnforcing() {
		verb := "quarantined"
		if record.Policy == dmarc.PolicyReject {
			verb = "rejected"
		}
		warnings = append(warnings, Warning{
			Code:     WarningExistingDMARCPolicy,
			Severity: SeverityInfo,
			Message: fmt.Sprintf(
				"existing DMARC policy p=%s: messages that fail authentication are %s by receiving servers",
				record.Policy, verb),
		})
	}

	return warnings
}
