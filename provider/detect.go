package provider

import (
	"regexp"

	"github.com/rulemailer/dnscheck/dns"
)

// nameserverPatterns maps nameserver hostnames to provider identifiers.
// Ordered; the first matching entry wins. Patterns are applied to the
// canonical (lowercase, no trailing dot) nameserver name.
var nameserverPatterns = []struct {
	Name    string
	Pattern *regexp.Regexp
}{
	{"cloudflare", regexp.MustCompile(`\.ns\.cloudflare\.com$`)},
	{"clouddns", regexp.MustCompile(`\.googledomains\.com$`)},
	{"route53", regexp.MustCompile(`\.awsdns-\d+\.(com|net|org|co\.uk)$`)},
	{"azure", regexp.MustCompile(`\.azure-dns\.(com|net|org|info)$`)},
	{"digitalocean", regexp.MustCompile(`^ns\d\.digitalocean\.com$`)},
	{"godaddy", regexp.MustCompile(`\.domaincontrol\.com$`)},
	{"loopia", regexp.MustCompile(`^ns\d\.loopia\.se$`)},
	{"one", regexp.MustCompile(`^ns\d+\.one\.com$`)},
}

// Detect identifies the DNS host from a domain's nameservers. Returns the
// provider identifier of the first pattern any nameserver matches, or ""
// when no pattern matches.
func Detect(nameservers []string) string {
	for _, p := range nameserverPatterns {
		for _, ns := range nameservers {
			if p.Pattern.MatchString(dns.CanonicalName(ns)) {
				return p.Name
			}
		}
	}
	return ""
}
