package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rulemailer/dnscheck"
	"github.com/rulemailer/dnscheck/provider"
)

func newCmdCheck() *cobra.Command {
	return &cobra.Command{
		Use:   "check <domain>",
		Short: "Verify a domain's mail-sending DNS records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			checker := dnscheck.NewChecker(dnscheck.CheckerConfig{
				Resolver: cfg.resolver(cmd),
				Target:   cfg.target(),
			})

			result, err := checker.Check(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printCheckResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newCmdDetect() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <domain>",
		Short: "Identify which DNS host serves a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			domain := dnscheck.Normalize(args[0])
			res, err := cfg.resolver(cmd).LookupNS(ctx, domain)
			if err != nil || len(res.Records) == 0 {
				return fmt.Errorf("no nameservers found for %s", domain)
			}

			name := provider.Detect(res.Records)
			if name == "" {
				return fmt.Errorf("unrecognized nameservers for %s: %v", domain, res.Records)
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}
