package dmarc

import (
	"strconv"
	"strings"
)

// Parse parses a raw TXT value as a DMARC record.
//
// It returns (nil, false) unless the trimmed value starts with "v=DMARC1".
// Tags are split on ";" and parsed as key=value pairs; a later duplicate
// tag overwrites an earlier one. Invalid optional tags (sp, aspf, adkim,
// rua, ruf, pct) are dropped silently. A missing or invalid p= tag makes
// the whole record invalid, in which case Parse returns (nil, false).
//
// Parse never returns an error: callers must treat a false result as
// "no actionable DMARC data", not as a failure.
func Parse(s string) (*Record, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "v=DMARC1") {
		return nil, false
	}

	tags := map[string]string{}
	for _, segment := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		// Last value wins for duplicate tags.
		tags[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	p := strings.ToLower(tags["p"])
	if !validPolicy(p) {
		return nil, false
	}

	r := &Record{
		Policy:     Policy(p),
		Percentage: -1,
	}

	if sp := strings.ToLower(tags["sp"]); validPolicy(sp) {
		r.SubdomainPolicy = Policy(sp)
	}
	if aspf := strings.ToLower(tags["aspf"]); validAlign(aspf) {
		r.ASPF = Align(aspf)
	}
	if adkim := strings.ToLower(tags["adkim"]); validAlign(adkim) {
		r.ADKIM = Align(adkim)
	}

	r.AggregateReportAddresses = parseMailtoList(tags["rua"])
	r.FailureReportAddresses = parseMailtoList(tags["ruf"])

	if pct, ok := parsePercentage(tags["pct"]); ok {
		r.Percentage = pct
	}

	return r, true
}

// parseMailtoList splits a rua/ruf tag value on commas and keeps only
// mailto URIs, with the scheme stripped. Returns nil when nothing remains.
func parseMailtoList(value string) []string {
	if value == "" {
		return nil
	}

	var addrs []string
	for _, uri := range strings.Split(value, ",") {
		uri = strings.TrimSpace(uri)
		if rest, ok := strings.CutPrefix(uri, "mailto:"); ok {
			addrs = append(addrs, rest)
		}
	}
	return addrs
}

// parsePercentage accepts only all-digit values in [0, 100].
func parsePercentage(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil || n > 100 {
		return 0, false
	}
	return n, true
}
