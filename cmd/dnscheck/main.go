// Command dnscheck verifies and provisions the DNS configuration a
// domain needs to send mail through the platform.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dnscheck",
		Short: "Verify and provision mail-sending DNS configuration",
		Long: `dnscheck inspects a domain's live DNS against the platform's required
records (sending-subdomain CNAME, DKIM CNAME, DMARC TXT) and can
converge a supported DNS host towards them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default $DNSCHECK_CONFIG, then dnscheck.yml)")
	cmd.PersistentFlags().StringSlice("nameserver", nil, "DNS server to query, host:port (repeatable)")
	cmd.PersistentFlags().Duration("timeout", 0, "overall command timeout")
	cmd.PersistentFlags().Bool("json", false, "print results as JSON")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cmd.PersistentPreRun = func(c *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if verbose, _ := c.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	}

	cmd.AddCommand(newCmdCheck())
	cmd.AddCommand(newCmdDetect())
	cmd.AddCommand(newCmdSetup())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dnscheck:", err)
		os.Exit(1)
	}
}
