package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbxtools/pbxray/internal/store"
)

var statsCmd = &cobra.Command{
	Use:       "stats [calls|registrations|events|sip|runs]",
	Short:     "Show call, registration and SIP statistics",
	Long:      `Stats prints aggregate statistics. With a section name only that section is shown, otherwise all of them are.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"calls", "registrations", "events", "sip", "runs"},
	RunE:      runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sections := map[string]func(context.Context, *store.Store) error{
		"calls":         printCallStats,
		"registrations": printRegistrationStats,
		"events":        printEventStats,
		"sip":           printSipStats,
		"runs":          printRunStats,
	}

	if len(args) == 1 {
		section, ok := sections[args[0]]
		if !ok {
			return fmt.Errorf("unknown section %q (known: calls, registrations, events, sip, runs)", args[0])
		}
		return section(ctx, st)
	}

	for i, name := range []string{"calls", "registrations", "events", "sip", "runs"} {
		if i > 0 {
			fmt.Println()
		}
		if err := sections[name](ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func printCallStats(ctx context.Context, st *store.Store) error {
	calls, err := st.GetCallStats(ctx)
	if err != nil {
		return err
	}

	fmt.Println(styleTitle.Render("Call statistics"))
	fmt.Println(statLine("total calls", calls.Total))
	fmt.Println(statLine("answered", calls.Answered))
	fmt.Println(statLine("no answer", calls.NoAnswer))
	fmt.Println(statLine("busy", calls.Busy))
	fmt.Println(statLine("failed", calls.Failed))
	fmt.Println(statLine("unique callers", calls.UniqueCallers))
	fmt.Println(statLine("avg duration", fmt.Sprintf("%.1fs", calls.AvgDuration)))
	fmt.Println(statLine("max duration", fmt.Sprintf("%ds", calls.MaxDuration)))
	fmt.Println(statLine("total talk time", fmt.Sprintf("%ds", calls.TotalTalkTime)))

	if len(calls.TopCallers) > 0 {
		fmt.Println()
		fmt.Println(styleTitle.Render("Top callers"))
		for _, c := range calls.TopCallers {
			fmt.Println(statLine(c.Number, fmt.Sprintf("%d calls, %d answered", c.Calls, c.Answered)))
		}
	}
	if len(calls.TopDestinations) > 0 {
		fmt.Println()
		fmt.Println(styleTitle.Render("Top destinations"))
		for _, d := range calls.TopDestinations {
			fmt.Println(statLine(d.Label, d.Count))
		}
	}
	if len(calls.BusiestHours) > 0 {
		fmt.Println()
		fmt.Println(styleTitle.Render("Busiest hours"))
		for _, h := range calls.BusiestHours {
			fmt.Println(statLine(h.Label+":00", h.Count))
		}
	}
	return nil
}

func printRegistrationStats(ctx context.Context, st *store.Store) error {
	reg, err := st.GetRegistrationSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Println(styleTitle.Render("Registrations"))
	fmt.Println(statLine("attempts", reg.Attempts))
	fmt.Println(statLine("responses", reg.Responses))
	fmt.Println(statLine("successes", reg.Successes))
	fmt.Println(statLine("failures", reg.Failures))
	return nil
}

func printEventStats(ctx context.Context, st *store.Store) error {
	events, err := st.GetSystemEventSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Println(styleTitle.Render("System events"))
	if len(events) == 0 {
		fmt.Println(statLine("none recorded", ""))
		return nil
	}
	for _, ev := range events {
		label := ev.EventType + " / " + ev.Category
		line := statLine(label, ev.Count)
		if ev.EventType == "ERROR" {
			line = "  " + styleError.Render(fmt.Sprintf("%-24s", label)) + " " + styleValue.Render(fmt.Sprint(ev.Count))
		}
		fmt.Println(line)
	}
	return nil
}

func printSipStats(ctx context.Context, st *store.Store) error {
	sip, err := st.GetSipSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Println(styleTitle.Render("SIP traffic"))
	fmt.Println(statLine("transmitted", fmt.Sprintf("%d (%d bytes)", sip.Transmitted, sip.TransmittedBytes)))
	fmt.Println(statLine("received", fmt.Sprintf("%d (%d bytes)", sip.Received, sip.ReceivedBytes)))
	return nil
}

func printRunStats(ctx context.Context, st *store.Store) error {
	runs, err := st.RecentRuns(ctx, 10)
	if err != nil {
		return err
	}
	fmt.Println(styleTitle.Render("Recent ingest runs"))
	if len(runs) == 0 {
		fmt.Println(statLine("none recorded", ""))
		return nil
	}
	for _, run := range runs {
		status := styleOK.Render(run.Status)
		if run.Status == store.RunFailed {
			status = styleError.Render(run.Status)
		}
		fmt.Printf("  %s  %s  %d lines  %d records  %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.SourceFile,
			run.TotalLines, run.Totals.Sum(), status)
	}
	return nil
}
