package dnscheck

import "errors"

var (
	// ErrNoProvider is returned by Provision when the Provisioner was
	// built without a provider.
	ErrNoProvider = errors.New("dnscheck: no DNS provider configured")
)
