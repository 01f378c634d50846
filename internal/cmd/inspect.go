package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbxtools/pbxray/internal/extract"
	"github.com/pbxtools/pbxray/internal/ingest"
	"github.com/pbxtools/pbxray/internal/record"
)

var inspectLines int

var inspectCmd = &cobra.Command{
	Use:   "inspect <logfile>",
	Short: "Classify sample lines without writing to the database",
	Long: `Inspect runs the extractor over the first lines of a log file and
prints how each one is classified. Useful for checking a log format
before a full parse.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectLines, "lines", "n", 20, "number of lines to sample")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	lines, err := ingest.ReadLines(args[0])
	if err != nil {
		return err
	}
	if len(lines) > inspectLines {
		lines = lines[:inspectLines]
	}

	ex := extract.New(extract.DefaultPatterns())
	var totals record.Totals

	fmt.Println(styleTitle.Render(fmt.Sprintf("Sampling %d lines from %s", len(lines), args[0])))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var b record.Bundle
		ex.ExtractLine(line, &b)
		if len(b.Entries) == 0 {
			fmt.Printf("  %s %s\n", styleWarn.Render("UNMATCHED   "), truncate(line, 90))
			continue
		}

		entry := b.Entries[0]
		totals.LogEntries += int64(len(b.Entries))
		totals.CallRecords += int64(len(b.Calls))
		totals.SipMessages += int64(len(b.SipMessages))
		totals.RegistrationEvents += int64(len(b.Registrations))
		totals.SystemEvents += int64(len(b.SystemEvents))

		tag := fmt.Sprintf("%-12s", entry.LogType)
		if entry.Level == "ERROR" {
			tag = styleError.Render(tag)
		} else {
			tag = styleOK.Render(tag)
		}
		fmt.Printf("  %s %s\n", tag, truncate(entry.Message, 90))
	}

	fmt.Println()
	fmt.Println(styleTitle.Render("Extracted"))
	fmt.Println(statLine("log entries", totals.LogEntries))
	fmt.Println(statLine("call records", totals.CallRecords))
	fmt.Println(statLine("sip messages", totals.SipMessages))
	fmt.Println(statLine("registration events", totals.RegistrationEvents))
	fmt.Println(statLine("system events", totals.SystemEvents))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
