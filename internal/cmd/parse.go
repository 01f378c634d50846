package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pbxtools/pbxray/internal/extract"
	"github.com/pbxtools/pbxray/internal/ingest"
	"github.com/pbxtools/pbxray/internal/pipeline"
	"github.com/pbxtools/pbxray/internal/store"
)

var (
	parseWorkers   int
	parseChunkSize int
	parseQueueCap  int
)

var parseCmd = &cobra.Command{
	Use:   "parse <logfile>",
	Short: "Parse a PBX log file into the database",
	Long: `Parse reads a PBX log file, extracts call records, SIP messages,
registrations and system events in parallel, and bulk-loads them into
PostgreSQL. Each run is recorded with its per-type counts.

Examples:
  pbxray parse /var/log/pbx/full.log
  pbxray parse full.log --workers 4 --chunk-size 5000`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().IntVar(&parseWorkers, "workers", 0, "extraction workers (default: CPU count - 1)")
	parseCmd.Flags().IntVar(&parseChunkSize, "chunk-size", 0, "lines per extraction chunk (default: INGEST_CHUNK_SIZE)")
	parseCmd.Flags().IntVar(&parseQueueCap, "queue-cap", 0, "result queue capacity (default: INGEST_QUEUE_CAP)")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "interrupted, stopping ingest...")
		cancel()
	}()

	lines, err := ingest.ReadLines(path)
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	workers := parseWorkers
	if workers == 0 {
		workers = cfg.Ingest.Workers
	}
	chunkSize := parseChunkSize
	if chunkSize == 0 {
		chunkSize = cfg.Ingest.ChunkSize
	}
	queueCap := parseQueueCap
	if queueCap == 0 {
		queueCap = cfg.Ingest.QueueCap
	}
	runner := pipeline.NewRunner(extract.New(extract.DefaultPatterns()), st, pipeline.Options{
		ChunkSize:   chunkSize,
		Workers:     workers,
		QueueCap:    queueCap,
		IdleTimeout: cfg.Ingest.IdleTimeout,
	})

	started := time.Now()
	totals, ingestErr := runner.Ingest(ctx, lines)

	run := store.Run{
		ID:         uuid.New(),
		SourceFile: path,
		StartedAt:  started,
		Duration:   time.Since(started),
		TotalLines: len(lines),
		Totals:     totals,
		Status:     store.RunSucceeded,
	}
	if ingestErr != nil {
		run.Status = store.RunFailed
		run.Error = ingestErr.Error()
	}

	// Record the run even when the ingest context was canceled.
	recordCtx, recordCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer recordCancel()
	if err := st.RecordRun(recordCtx, run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record run: %v\n", err)
	}

	fmt.Println(styleTitle.Render(fmt.Sprintf("Parsed %s in %s", path, run.Duration.Round(time.Millisecond))))
	fmt.Println(statLine("lines read", len(lines)))
	fmt.Println(statLine("log entries", totals.LogEntries))
	fmt.Println(statLine("call records", totals.CallRecords))
	fmt.Println(statLine("sip messages", totals.SipMessages))
	fmt.Println(statLine("registration events", totals.RegistrationEvents))
	fmt.Println(statLine("system events", totals.SystemEvents))
	fmt.Println(statLine("total persisted", totals.Sum()))

	if ingestErr != nil {
		fmt.Println(styleError.Render("ingest finished with errors"))
		return ingestErr
	}
	fmt.Println(styleOK.Render("done"))
	return nil
}
