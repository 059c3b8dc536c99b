package provider

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		nameservers []string
		want        string
	}{
		{"cloudflare", []string{"abby.ns.cloudflare.com.", "rudy.ns.cloudflare.com."}, "cloudflare"},
		{"cloudflare mixed case", []string{"ABBY.NS.CLOUDFLARE.COM"}, "cloudflare"},
		{"google cloud dns", []string{"ns-cloud-a1.googledomains.com."}, "clouddns"},
		{"route53", []string{"ns-1234.awsdns-56.org.", "ns-789.awsdns-01.co.uk."}, "route53"},
		{"azure", []string{"ns1-03.azure-dns.com.", "ns2-03.azure-dns.net."}, "azure"},
		{"digitalocean", []string{"ns1.digitalocean.com."}, "digitalocean"},
		{"godaddy", []string{"ns57.domaincontrol.com."}, "godaddy"},
		{"loopia", []string{"ns1.loopia.se.", "ns2.loopia.se."}, "loopia"},
		{"one.com", []string{"ns01.one.com."}, "one"},
		{"first match wins", []string{"ns1.loopia.se.", "abby.ns.cloudflare.com."}, "cloudflare"},
		{"unknown host", []string{"ns1.example-dns.net."}, ""},
		{"embedded lookalike", []string{"abby.ns.cloudflare.com.evil.net."}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.nameservers); got != tt.want {
				t.Errorf("Detect(%v) = %q, want %q", tt.nameservers, got, tt.want)
			}
		})
	}
}
