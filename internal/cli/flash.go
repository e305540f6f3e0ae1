package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/hydrolabs/olicloud-go/internal/oli"
	"github.com/hydrolabs/olicloud-go/internal/requests"
)

var (
	flashBatchSize    int
	flashBurstTag     string
	flashPollInterval time.Duration
	flashMaxPolls     int
	flashOutput       string
	flashDBSFile      string
	flashKeepFiles    bool
	flashNoProgress   bool
)

var flashCmd = &cobra.Command{
	Use:   "flash <requests-file>",
	Short: "Run a batch of flash calculations",
	Long: `Run an ordered list of flash requests from a YAML or JSON file.

Requests are dispatched in concurrent batches and polled to completion;
results are written in input order.

Examples:
  olicloud flash samples.yaml
  olicloud flash samples.yaml --batch-size 10 --output results.json
  olicloud flash sweep.json --dbs-file brine.dbs --burst-tag 42`,
	Args: cobra.ExactArgs(1),
	RunE: runFlash,
}

func init() {
	flashCmd.Flags().IntVar(&flashBatchSize, "batch-size", 0, "requests dispatched concurrently at a time (0 = all at once)")
	flashCmd.Flags().StringVar(&flashBurstTag, "burst-tag", "", "burst-lane routing tag")
	flashCmd.Flags().DurationVar(&flashPollInterval, "poll-interval", 0, "pause between result polls (default from config)")
	flashCmd.Flags().IntVar(&flashMaxPolls, "max-polls", 0, "poll attempts per request (default from config)")
	flashCmd.Flags().StringVarP(&flashOutput, "output", "o", "", "write results JSON to file (default stdout)")
	flashCmd.Flags().StringVar(&flashDBSFile, "dbs-file", "", "upload this DBS file first and use its ID for requests without one")
	flashCmd.Flags().BoolVar(&flashKeepFiles, "keep-files", false, "retain uploaded DBS files after the run")
	flashCmd.Flags().BoolVar(&flashNoProgress, "no-progress", false, "disable the interactive progress display")
}

func runFlash(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	reqs, err := requests.Load(args[0])
	if err != nil {
		return err
	}

	sess := oliClient.OpenSession()
	defer sess.Close(ctx)

	if flashDBSFile != "" {
		fileID, err := sess.UploadDBSFile(ctx, flashDBSFile, flashKeepFiles)
		if err != nil {
			return fmt.Errorf("upload DBS file: %w", err)
		}
		requests.FillFileID(reqs, fileID)
	}

	opts := oli.BatchOptions{
		BatchSize:    flashBatchSize,
		BurstTag:     flashBurstTag,
		PollInterval: flashPollInterval,
		MaxPolls:     flashMaxPolls,
	}

	var results []oli.FlashResult
	if flashNoProgress {
		results, err = oliClient.ProcessRequestList(ctx, reqs, opts)
	} else {
		results, err = RunBatchProgress(ctx, oliClient, reqs, opts)
	}
	if err != nil {
		return fmt.Errorf("process requests: %w", err)
	}
	if results == nil {
		// Run was abandoned from the progress display.
		return nil
	}

	if err := writeResults(results, flashOutput); err != nil {
		return err
	}
	printRunStats()
	return nil
}

// writeResults encodes the result collection as indented JSON.
func writeResults(results []oli.FlashResult, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if path != "" {
		fmt.Printf("Wrote %d results to %s\n", len(results), path)
	}
	return nil
}

// printRunStats prints per-method timing collected during the run.
func printRunStats() {
	snap := collector.Snapshot()
	if len(snap.Operations) == 0 {
		return
	}

	methods := make([]string, 0, len(snap.Operations))
	for m := range snap.Operations {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	fmt.Printf("\n%-26s %8s %10s %10s %10s\n", "METHOD", "COUNT", "AVG MS", "MIN MS", "MAX MS")
	for _, m := range methods {
		op := snap.Operations[m]
		fmt.Printf("%-26s %8d %10.1f %10d %10d\n", m, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}
}
