// Package dmarc parses published DMARC TXT records for configuration
// analysis.
//
// Unlike a receiving-side DMARC verifier, which must reject malformed
// records outright, this parser is deliberately lenient: it extracts
// whatever well-formed tags a record carries and silently drops the rest.
// The only tag that can invalidate a record is p= (the policy), since a
// DMARC record without a usable policy carries no actionable information.
//
// Fields and values that are case-insensitive in DMARC are returned in
// lower case for easy comparison.
package dmarc

import (
	"strconv"
	"strings"
)

// Policy determines how receivers should handle messages that fail DMARC.
type Policy string

const (
	// PolicyNone requests no action, only reporting.
	PolicyNone Policy = "none"

	// PolicyQuarantine requests failing messages be treated as suspicious,
	// typically delivered to spam.
	PolicyQuarantine Policy = "quarantine"

	// PolicyReject requests failing messages be rejected during SMTP.
	PolicyReject Policy = "reject"
)

// Align is an identifier alignment mode.
type Align string

const (
	// AlignRelaxed allows an organizational-domain match.
	AlignRelaxed Align = "r"

	// AlignStrict requires an exact domain match.
	AlignStrict Align = "s"
)

// Record is a parsed DMARC DNS TXT record.
//
// Example record:
//
//	v=DMARC1; p=reject; rua=mailto:dmarc@example.com
type Record struct {
	// Policy is the requested policy for messages that fail DMARC.
	// Always set; a record without a valid p= tag does not parse.
	Policy Policy `json:"p"`

	// SubdomainPolicy is the policy for subdomains. Empty when absent or
	// invalid; Policy applies then.
	SubdomainPolicy Policy `json:"sp,omitempty"`

	// ASPF is the SPF alignment mode. Empty when absent or invalid.
	ASPF Align `json:"aspf,omitempty"`

	// ADKIM is the DKIM alignment mode. Empty when absent or invalid.
	ADKIM Align `json:"adkim,omitempty"`

	// AggregateReportAddresses are the mailto targets of the rua tag,
	// with the "mailto:" prefix stripped. Nil when the tag is absent or
	// contains no mailto URIs.
	AggregateReportAddresses []string `json:"rua,omitempty"`

	// FailureReportAddresses are the mailto targets of the ruf tag,
	// with the "mailto:" prefix stripped. Nil when the tag is absent or
	// contains no mailto URIs.
	FailureReportAddresses []string `json:"ruf,omitempty"`

	// Percentage is the pct tag value in [0, 100], or -1 when the tag is
	// absent or invalid.
	Percentage int `json:"pct,omitempty"`
}

// validPolicy reports whether s is one of the three defined policies.
func validPolicy(s string) bool {
	switch Policy(s) {
	case PolicyNone, PolicyQuarantine, PolicyReject:
		return true
	}
	return false
}

// validAlign reports whether s is a defined alignment mode.
func validAlign(s string) bool {
	switch Align(s) {
	case AlignRelaxed, AlignStrict:
		return true
	}
	return false
}

// IsEnforcing reports whether the policy quarantines or rejects failing
// messages.
func (r *Record) IsEnforcing() bool {
	return r.Policy == PolicyQuarantine || r.Policy == PolicyReject
}

// String returns the record formatted as a DNS TXT value.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("v=DMARC1")

	write := func(do bool, tag, value string) {
		if do {
			b.WriteString("; ")
			b.WriteString(tag)
			b.WriteString("=")
			b.WriteString(value)
		}
	}

	write(r.Policy != "", "p", string(r.Policy))
	write(r.SubdomainPolicy != "", "sp", string(r.SubdomainPolicy))
	write(r.ASPF != "", "aspf", string(r.ASPF))
	write(r.ADKIM != "", "adkim", string(r.ADKIM))

	if len(r.AggregateReportAddresses) > 0 {
		write(true, "rua", "mailto:"+strings.Join(r.AggregateReportAddresses, ",mailto:"))
	}
	if len(r.FailureReportAddresses) > 0 {
		write(true, "ruf", "mailto:"+strings.Join(r.FailureReportAddresses, ",mailto:"))
	}

	if r.Percentage >= 0 && r.Percentage <= 100 {
		write(true, "pct", strconv.Itoa(r.Percentage))
	}

	return b.String()
}
