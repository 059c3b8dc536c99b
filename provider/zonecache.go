package provider

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rulemailer/dnscheck/dns"
)

// ZoneCache memoizes domain-to-zone-ID resolution for a provider
// instance. Concurrent callers for the same domain are deduplicated: N
// concurrent ID calls against an unresolved domain trigger exactly one
// underlying lookup. A failed lookup is not cached, so a later call
// retries.
//
// The zero value is ready to use; embed one per adapter instance.
type ZoneCache struct {
	group singleflight.Group

	mu  sync.Mutex
	ids map[string]string
}

// ID returns the memoized zone ID for domain, calling lookup at most once
// per uncached domain even under concurrency.
func (c *ZoneCache) ID(domain string, lookup func() (string, error)) (string, error) {
	key := dns.CanonicalName(domain)

	c.mu.Lock()
	if id, ok := c.ids[key]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		id, err := lookup()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.ids == nil {
			c.ids = make(map[string]string)
		}
		c.ids[key] = id
		c.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
