// Package dnscheck verifies and converges the DNS configuration a domain
// needs to send email through the platform.
//
// # Checking
//
// A Checker inspects live DNS for a domain against a Target configuration
// and classifies each record category as pass, fail or missing:
//
//	checker := dnscheck.NewChecker(dnscheck.CheckerConfig{
//	    Resolver: dns.NewResolver(dns.ResolverConfig{}),
//	})
//	result, err := checker.Check(ctx, "user@example.com")
//	if result.AllPassed {
//	    // Domain is fully configured.
//	}
//	for _, w := range result.Warnings {
//	    fmt.Println(w.Severity, w.Code, w.Message)
//	}
//
// Input is normalized, so bare domains, email addresses and URLs all work.
// Lookup failures (NXDOMAIN, SERVFAIL, timeouts) are folded into the
// missing status; checking a domain never hard-fails on flaky DNS.
//
// # Provisioning
//
// A Provisioner converges a DNS host's records towards the Target using a
// provider adapter. It re-checks the domain, skips records DNS already
// satisfies, deletes conflicting records and creates the missing ones:
//
//	prov := dnscheck.NewProvisioner(dnscheck.ProvisionerConfig{
//	    Provider: cloudflare.New(cloudflare.Config{...}),
//	})
//	result, err := prov.Provision(ctx, "example.com")
//
// Provisioning is idempotent: re-running against converged state performs
// no mutations. Mutations are not transactional; when a provider call
// fails mid-run the partial result is returned alongside the error.
//
// # Warnings
//
// Both checking and provisioning surface structured warnings about
// conflicting records, Cloudflare proxying and risky existing DMARC
// policies. The warning code set is closed; see the Warning* constants.
package dnscheck

import "github.com/oklog/ulid/v2"

// newRunID returns a unique identifier for one check or provision run,
// used for log correlation.
func newRunID() string {
	return ulid.Make().String()
}
