package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbxtools/pbxray/internal/report"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the HTML analysis report",
	Long: `Report collects call statistics, registration and SIP summaries and
recent system errors from the database and writes them as a single
self-contained HTML page.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file (default: REPORT_OUTPUT)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := report.Collect(ctx, st)
	if err != nil {
		return err
	}

	out := reportOutput
	if out == "" {
		out = cfg.Report.OutputFile
	}
	if err := report.WriteHTML(out, data); err != nil {
		return err
	}

	fmt.Println(styleOK.Render("report written to " + out))
	return nil
}
