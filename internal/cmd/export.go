package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbxtools/pbxray/internal/report"
	"github.com/pbxtools/pbxray/internal/store"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export [tables...]",
	Short: "Export tables to CSV files",
	Long: `Export writes database tables as timestamped CSV files. With table
names only those tables are exported, otherwise every table is.

Known tables: ` + strings.Join(store.TableNames(), ", ") + `.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", "", "output directory (default: EXPORT_DIR)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	dir := exportDir
	if dir == "" {
		dir = cfg.Report.ExportDir
	}

	if len(args) == 0 {
		files, err := report.ExportAll(ctx, st, dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println(styleOK.Render("wrote " + f))
		}
		return nil
	}

	// Validate every name before writing any file.
	tables := make([]store.Table, 0, len(args))
	for _, name := range args {
		table, ok := store.TableByName(name)
		if !ok {
			return fmt.Errorf("unknown table %q (known: %s)", name, strings.Join(store.TableNames(), ", "))
		}
		tables = append(tables, table)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	for _, table := range tables {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", table.Name, stamp))
		rows, err := exportOne(ctx, st, table, path)
		if err != nil {
			return err
		}
		fmt.Println(styleOK.Render(fmt.Sprintf("wrote %s (%d rows)", path, rows)))
	}
	return nil
}

func exportOne(ctx context.Context, st *store.Store, table store.Table, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	rows, err := report.ExportTable(ctx, st, table, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return rows, err
}
