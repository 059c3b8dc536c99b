package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/rulemailer/dnscheck"
	"github.com/rulemailer/dnscheck/provider"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCheckResult(w io.Writer, result *dnscheck.CheckResult) {
	fmt.Fprintf(w, "Checks for %s\n", result.Domain)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Check", "Status", "Expected", "Found"})
	table.SetAutoWrapText(false)
	appendCheck(table, "NS", result.Checks.NS)
	appendCheck(table, "MX", result.Checks.MX)
	appendCheck(table, "SPF", result.Checks.SPF)
	appendCheck(table, "DKIM", result.Checks.DKIM)
	appendCheck(table, "DMARC", result.Checks.DMARC)
	table.Render()

	if result.AllPassed {
		fmt.Fprintln(w, "All required records are in place.")
	}
	printWarnings(w, result.Warnings)
}

func appendCheck(table *tablewriter.Table, name string, check dnscheck.RecordCheck) {
	table.Append([]string{
		name,
		strings.ToUpper(string(check.Status)),
		truncate(check.Expected),
		truncate(strings.Join(check.Actual, " ")),
	})
}

func printProvisionResult(w io.Writer, result *dnscheck.ProvisionResult) {
	fmt.Fprintf(w, "Provisioning for %s\n", result.Domain)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Action", "Type", "Name", "Value"})
	table.SetAutoWrapText(false)
	for _, r := range result.Created {
		appendAction(table, "CREATE", r.Type, r.Name, r.Value)
	}
	for _, r := range result.Deleted {
		appendAction(table, "DELETE", r.Type, r.Name, r.Value)
	}
	for _, r := range result.Updated {
		appendAction(table, "UPDATE", r.Type, r.Name, describeUpdate(r))
	}
	for _, r := range result.Skipped {
		appendAction(table, "SKIP", r.Type, r.Name, r.Value)
	}
	table.Render()

	printWarnings(w, result.Warnings)
}

func appendAction(table *tablewriter.Table, action, typ, name, value string) {
	table.Append([]string{action, typ, name, truncate(value)})
}

func describeUpdate(r provider.Record) string {
	if !r.Proxied {
		return r.Value + " (proxying disabled)"
	}
	return r.Value
}

func printWarnings(w io.Writer, warnings []dnscheck.Warning) {
	if len(warnings) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Severity", "Code", "Message"})
	table.SetAutoWrapText(false)
	for _, warning := range warnings {
		table.Append([]string{
			strings.ToUpper(string(warning.Severity)),
			warning.Code,
			warning.Message,
		})
	}
	table.Render()
}

func truncate(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
