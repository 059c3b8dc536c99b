package main

import (
	"github.com/spf13/cobra"

	"github.com/rulemailer/dnscheck"
)

func newCmdSetup() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup <domain>",
		Short: "Converge a DNS host's records to the required configuration",
		Long: `Setup checks the domain, then creates the missing records at the
configured DNS host, deleting conflicting records first. Records that
live DNS already satisfies are left alone. Re-running setup against a
converged domain performs no changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			providerName, _ := cmd.Flags().GetString("provider")
			prov, err := cfg.buildProvider(ctx, providerName)
			if err != nil {
				return err
			}

			provisioner := dnscheck.NewProvisioner(dnscheck.ProvisionerConfig{
				Provider: prov,
				Resolver: cfg.resolver(cmd),
				Target:   cfg.target(),
			})

			result, err := provisioner.Provision(ctx, args[0])
			if result != nil {
				// A partial result is still worth showing when a
				// provider call failed mid-run.
				if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
					if perr := printJSON(cmd.OutOrStdout(), result); perr != nil && err == nil {
						err = perr
					}
				} else {
					printProvisionResult(cmd.OutOrStdout(), result)
				}
			}
			return err
		},
	}

	cmd.Flags().String("provider", "cloudflare", "DNS host to provision (cloudflare, clouddns, rfc2136)")
	return cmd
}
