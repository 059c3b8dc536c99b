package dnscheck

import "fmt"

// Target describes the fixed DNS configuration a domain needs to send mail
// through the platform. The checker compares live DNS against it and the
// provisioner converges a DNS host towards it; none of the algorithms
// hard-code these values.
type Target struct {
	// SendingSubdomain is the label under which the platform's MX/SPF
	// machinery is rooted, e.g. "rm" for rm.example.com.
	SendingSubdomain string

	// CNAMETarget is the alias target for the sending subdomain. Pointing
	// the sending subdomain here inherits the platform's MX and SPF.
	CNAMETarget string

	// MXHost is the mail exchange host expected behind the sending
	// subdomain once the alias resolves.
	MXHost string

	// SPFInclude is the token that must appear in a domain-local v=spf1
	// record for SPF to pass without the alias.
	SPFInclude string

	// DKIMSelector is the selector label for the DKIM key record,
	// e.g. "keyse" for keyse._domainkey.example.com.
	DKIMSelector string

	// DKIMTarget is the alias target publishing the platform's DKIM key.
	DKIMTarget string

	// DMARCPolicy is the literal TXT value provisioned for domains
	// without an existing DMARC record.
	DMARCPolicy string
}

// DefaultTarget is the production configuration of the platform.
var DefaultTarget = Target{
	SendingSubdomain: "rm",
	CNAMETarget:      "to.rulemailer.se",
	MXHost:           "to.rulemailer.se",
	SPFInclude:       "spf.rulemailer.se",
	DKIMSelector:     "keyse",
	DKIMTarget:       "keyse._domainkey.rulemailer.se",
	DMARCPolicy:      "v=DMARC1; p=none; rua=mailto:dmarc@rule.se; ruf=mailto:authfail@rule.se",
}

// SendingName returns the sending subdomain name for domain,
// e.g. "rm.example.com".
func (t Target) SendingName(domain string) string {
	return fmt.Sprintf("%s.%s", t.SendingSubdomain, domain)
}

// DKIMName returns the DKIM key name for domain,
// e.g. "keyse._domainkey.example.com".
func (t Target) DKIMName(domain string) string {
	return fmt.Sprintf("%s._domainkey.%s", t.DKIMSelector, domain)
}

// DMARCLookupName returns the name checked for an existing DMARC policy,
// always rooted at the bare domain per RFC 7489.
func (t Target) DMARCLookupName(domain string) string {
	return "_dmarc." + domain
}

// DMARCProvisionName returns the name under which the platform provisions
// its DMARC record. It is rooted at the sending subdomain so that an
// existing organization-level policy at _dmarc.{domain} is never touched.
func (t Target) DMARCProvisionName(domain string) string {
	return "_dmarc." + t.SendingName(domain)
}
