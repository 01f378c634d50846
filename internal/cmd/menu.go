package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pbxtools/pbxray/internal/application"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Run the interactive terminal menu",
	Long: `Menu opens a full-screen terminal interface covering the same
operations as the subcommands: parsing log files, browsing statistics,
generating reports and database maintenance.`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	st, err := openStore(context.Background())
	if err != nil {
		return err
	}
	defer st.Close()

	return application.New(st, cfg).Run()
}
