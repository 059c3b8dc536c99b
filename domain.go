package dnscheck

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Normalize canonicalizes a user-supplied identifier into a comparable
// domain name. It accepts bare domains, email addresses and URLs:
//
//	Normalize("john@Example.com") == "example.com"
//	Normalize("https://www.example.com/path") == "example.com"
//	Normalize("shop.example.com.") == "shop.example.com"
//
// The result is lowercase, without scheme, userinfo, path or trailing dot,
// and with a single leading "www." stripped; other subdomains are
// preserved. Internationalized names are converted to punycode. Normalize
// is best-effort and never fails: garbage in gives garbage out, and it is
// the caller's job to validate the domain if needed.
func Normalize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))

	// Email address: keep the part after the last @.
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}

	// URL: extract the host component.
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Hostname() != "" {
			s = u.Hostname()
		} else {
			s = s[strings.Index(s, "://")+3:]
		}
	}

	// Anything after the first remaining slash is a path.
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}

	s = strings.TrimSuffix(s, ".")
	s = strings.TrimPrefix(s, "www.")

	// Unicode labels become punycode; on error the textual result stands.
	if ascii, err := idna.Lookup.ToASCII(s); err == nil && ascii != "" {
		s = ascii
	}

	return s
}
