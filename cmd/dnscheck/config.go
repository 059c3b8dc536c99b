package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rulemailer/dnscheck"
	"github.com/rulemailer/dnscheck/dns"
	"github.com/rulemailer/dnscheck/provider"
	"github.com/rulemailer/dnscheck/provider/clouddns"
	"github.com/rulemailer/dnscheck/provider/cloudflare"
	"github.com/rulemailer/dnscheck/provider/rfc2136"
)

// config is the YAML file format. All sections are optional; checking
// works without any file at all.
type config struct {
	// Nameservers to query instead of the system resolvers.
	Nameservers []string `yaml:"nameservers"`

	// Target overrides individual fields of the default target
	// configuration.
	Target struct {
		SendingSubdomain string `yaml:"sending_subdomain"`
		CNAMETarget      string `yaml:"cname_target"`
		MXHost           string `yaml:"mx_host"`
		SPFInclude       string `yaml:"spf_include"`
		DKIMSelector     string `yaml:"dkim_selector"`
		DKIMTarget       string `yaml:"dkim_target"`
		DMARCPolicy      string `yaml:"dmarc_policy"`
	} `yaml:"target"`

	Providers struct {
		Cloudflare *struct {
			APIKey string `yaml:"api_key"`
			Email  string `yaml:"email"`
			Zone   string `yaml:"zone"`
		} `yaml:"cloudflare"`

		CloudDNS *struct {
			Project            string `yaml:"project"`
			ServiceAccountFile string `yaml:"service_account_file"`
			Zone               string `yaml:"zone"`
		} `yaml:"clouddns"`

		RFC2136 *struct {
			Server        string        `yaml:"server"`
			Zone          string        `yaml:"zone"`
			TSIGName      string        `yaml:"tsig_name"`
			TSIGSecret    string        `yaml:"tsig_secret"`
			TSIGAlgorithm string        `yaml:"tsig_algorithm"`
			Timeout       time.Duration `yaml:"timeout"`
		} `yaml:"rfc2136"`
	} `yaml:"providers"`
}

// loadConfig reads the config file named by the flag, the environment or
// the default path. A missing default file is not an error.
func loadConfig(cmd *cobra.Command) (*config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if path == "" {
		path = os.Getenv("DNSCHECK_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = "dnscheck.yml"
	}

	cfg := &config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// target merges config overrides onto the default target.
func (c *config) target() *dnscheck.Target {
	t := dnscheck.DefaultTarget
	if v := c.Target.SendingSubdomain; v != "" {
		t.SendingSubdomain = v
	}
	if v := c.Target.CNAMETarget; v != "" {
		t.CNAMETarget = v
	}
	if v := c.Target.MXHost; v != "" {
		t.MXHost = v
	}
	if v := c.Target.SPFInclude; v != "" {
		t.SPFInclude = v
	}
	if v := c.Target.DKIMSelector; v != "" {
		t.DKIMSelector = v
	}
	if v := c.Target.DKIMTarget; v != "" {
		t.DKIMTarget = v
	}
	if v := c.Target.DMARCPolicy; v != "" {
		t.DMARCPolicy = v
	}
	return &t
}

// resolver builds the resolver from the --nameserver flags or the config
// file, falling back to the system resolvers.
func (c *config) resolver(cmd *cobra.Command) dns.Resolver {
	nameservers, _ := cmd.Flags().GetStringSlice("nameserver")
	if len(nameservers) == 0 {
		nameservers = c.Nameservers
	}
	return dns.NewResolver(dns.ResolverConfig{Nameservers: nameservers})
}

// buildProvider constructs the named provider adapter from the config.
func (c *config) buildProvider(ctx context.Context, name string) (provider.Provider, error) {
	switch name {
	case "cloudflare":
		if c.Providers.Cloudflare == nil {
			return nil, fmt.Errorf("no cloudflare section in config")
		}
		p := c.Providers.Cloudflare
		return cloudflare.New(cloudflare.Config{
			APIKey: p.APIKey,
			Email:  p.Email,
			Zone:   p.Zone,
		})
	case "clouddns":
		if c.Providers.CloudDNS == nil {
			return nil, fmt.Errorf("no clouddns section in config")
		}
		p := c.Providers.CloudDNS
		return clouddns.New(ctx, clouddns.Config{
			Project:            p.Project,
			ServiceAccountFile: p.ServiceAccountFile,
			Zone:               p.Zone,
		})
	case "rfc2136":
		if c.Providers.RFC2136 == nil {
			return nil, fmt.Errorf("no rfc2136 section in config")
		}
		p := c.Providers.RFC2136
		return rfc2136.New(rfc2136.Config{
			Server:        p.Server,
			Zone:          p.Zone,
			TSIGName:      p.TSIGName,
			TSIGSecret:    p.TSIGSecret,
			TSIGAlgorithm: p.TSIGAlgorithm,
			Timeout:       p.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: cloudflare, clouddns, rfc2136)", name)
	}
}

// commandContext applies the --timeout flag to the command context.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
