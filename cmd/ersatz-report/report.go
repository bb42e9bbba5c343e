//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/farcloser/ersatz"
	"github.com/farcloser/ersatz/internal/output"
)

const outputFile = "ersatz-report.jsonl"

var (
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no audio files found")
	errReportArgs   = errors.New("expected exactly one argument: folder path")
)

//nolint:gochecknoglobals // configuration data, effectively const
var audioExtensions = []string{".flac", ".wav", ".mp3", ".m4a", ".ogg", ".opus", ".aif", ".aiff", ".alac"}

// reportOptions carries the report flags.
type reportOptions struct {
	redact     bool
	workers    int
	maxSeconds int
	minScore   uint
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Scan a music collection and write an ersatz JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
				Sources: cli.EnvVars("ERSATZ_WORKERS"),
			},
			&cli.IntFlag{
				Name:    "max-seconds",
				Usage:   "Seconds of audio to analyze from the start of each file",
				Value:   ersatz.DefaultMaxSeconds,
				Sources: cli.EnvVars("ERSATZ_MAX_SECONDS"),
			},
			&cli.IntFlag{
				Name:  "min-score",
				Usage: "Only record analyzed files scoring at least this much (failures are always recorded)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errReportArgs
			}

			opts := reportOptions{
				redact:     cmd.Bool("redact-path"),
				workers:    max(cmd.Int("workers"), 1),
				maxSeconds: cmd.Int("max-seconds"),
				minScore:   uint(max(cmd.Int("min-score"), 0)), //nolint:gosec // clamped non-negative
			}

			return runReport(ctx, cmd.Args().First(), opts)
		},
	}
}

func runReport(ctx context.Context, folder string, opts reportOptions) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	// Collect audio files.
	files, err := collectAudioFiles(folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoAudioFiles)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to analyze (%d workers)\n", len(files), opts.workers)

	// The decoder probes PATH once, then is shared by every worker.
	analysisOpts := ersatz.Options{
		Decoder:    ersatz.DefaultDecoder(),
		MaxSeconds: opts.maxSeconds,
	}

	startTime := time.Now()
	results := make([]Record, len(files))

	var progress atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.workers)

	for idx, filePath := range files {
		group.Go(func() error {
			results[idx] = processFile(groupCtx, filePath, analysisOpts)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return err
	}

	// Write results in file order.
	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed, skipped := 0, 0

	var totalRead, totalAnalyze time.Duration

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totalRead += millisToDuration(record.Timing.ReadMs)
			totalAnalyze += millisToDuration(record.Timing.AnalyzeMs)
		}

		if belowMinScore(record, opts.minScore) {
			skipped++

			continue
		}

		if opts.redact {
			record.File = ""
			record.Error = strings.ReplaceAll(record.Error, files[idx], "(redacted)")
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "file", files[idx], "error", err)
		}
	}

	out.Close()

	// Compress.
	if err := compressFile(outputFile); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %dm %ds (%d failed, %d below min score)\n",
		len(files), minutes, seconds, failed, skipped)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", outputFile, outputFile)

	// Timing breakdown.
	processed := len(files) - failed
	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  Wall clock:  %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  read:        %s (cumulative)\n", totalRead.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  analysis:    %s (cumulative)\n", totalAnalyze.Truncate(time.Millisecond))

	if processed > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:    %s (read: %s, analyze: %s)\n",
			(totalRead+totalAnalyze)/time.Duration(processed),
			totalRead/time.Duration(processed),
			totalAnalyze/time.Duration(processed),
		)
	}

	// Print digest summary.
	fmt.Fprintln(os.Stderr)

	return runDigest(outputFile, "")
}

func processFile(ctx context.Context, filePath string, opts ersatz.Options) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	data, err := os.ReadFile(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	timing.ReadMs = durationMs(time.Since(fileStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("read failed: %v", err), Timing: timing}
	}

	analyzeStart := time.Now()

	// Undecodable and too short files are results, not failures.
	result, err := ersatz.Analyze(ctx, data, 0, opts)

	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	status := output.Status(err)
	if status == output.StatusFailed {
		return Record{File: filePath, Error: fmt.Sprintf("analysis failed: %v", err), Timing: timing}
	}

	if err != nil {
		slog.Debug("analysis incomplete", "file", filePath, "status", status, "error", err)
	}

	return Record{
		File:     filePath,
		Size:     int64(len(data)),
		Analysis: output.ResultToMap(result, err),
		Timing:   timing,
	}
}

// belowMinScore reports whether an analyzed record should be left out of the report.
func belowMinScore(record *Record, minScore uint) bool {
	if minScore == 0 || record.Analysis == nil {
		return false
	}

	score, ok := record.Analysis["score"].(uint)

	return ok && score < minScore
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}
