package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbxtools/pbxray/internal/store"
)

var clearYes bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance commands",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create tables and indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Println(styleOK.Render("schema ready on " + store.DatabaseName(cfg.Database.URL)))
		return nil
	},
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show row counts and recent ingest runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Println(styleTitle.Render("Database " + store.DatabaseName(cfg.Database.URL)))
		counts, err := st.TableCounts(ctx)
		if err != nil {
			return err
		}
		for _, c := range counts {
			fmt.Println(statLine(c.Table, c.Rows))
		}

		runs, err := st.RecentRuns(ctx, 5)
		if err != nil {
			return err
		}
		if len(runs) > 0 {
			fmt.Println()
			fmt.Println(styleTitle.Render("Recent ingest runs"))
			for _, run := range runs {
				status := styleOK.Render(run.Status)
				if run.Status == store.RunFailed {
					status = styleError.Render(run.Status)
				}
				fmt.Printf("  %s  %s  %d lines  %s\n",
					run.StartedAt.Format("2006-01-02 15:04:05"), run.SourceFile, run.TotalLines, status)
			}
		}
		return nil
	},
}

var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all parsed data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes && !confirm("This deletes all parsed data. Continue? [y/N] ") {
			fmt.Println("aborted")
			return nil
		}

		ctx := context.Background()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Truncate(ctx, store.Tables()); err != nil {
			return err
		}
		fmt.Println(styleOK.Render("all tables truncated"))
		return nil
	},
}

var dbVacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Run VACUUM ANALYZE on all tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Vacuum(ctx); err != nil {
			return err
		}
		fmt.Println(styleOK.Render("vacuum analyze complete"))
		return nil
	},
}

func init() {
	dbClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation")
	dbCmd.AddCommand(dbInitCmd, dbInfoCmd, dbClearCmd, dbVacuumCmd)
	rootCmd.AddCommand(dbCmd)
}

// confirm prompts on stdout and reads a yes/no answer from stdin.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
