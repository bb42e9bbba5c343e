package main

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/ersatz/internal/output"
)

var errDigestArgs = errors.New("expected exactly one argument: path to report.jsonl")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from an ersatz JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "flag",
				Usage: "Show files carrying a specific flag (e.g., severe_hf_damage, cliff_at_20khz)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(cmd.Args().First(), cmd.String("flag"))
		},
	}
}

func runDigest(reportPath, flagFilter string) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if flagFilter != "" {
		printFlagDetail(records, flagFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func printDigest(records []digestRecord) {
	total := len(records)
	failures := 0
	statusDist := map[string]int{}
	verdictDist := map[string]int{"clean": 0, "suspicious": 0, "likely_transcode": 0, "transcode": 0}
	flagDist := map[int]int{}
	flagStats := map[string]*flagBreakdown{}

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			failures++

			continue
		}

		statusDist[rec.Analysis.Status]++

		if rec.Analysis.Status != output.StatusAnalyzed {
			continue
		}

		verdictDist[rec.Analysis.Verdict]++
		flagDist[len(rec.Analysis.Flags)]++

		for _, flag := range rec.Analysis.Flags {
			breakdown, ok := flagStats[flag]
			if !ok {
				breakdown = &flagBreakdown{Flag: flag}
				flagStats[flag] = breakdown
			}

			breakdown.Total++
		}
	}

	fmt.Println("=== Ersatz Report Digest ===")
	fmt.Println()
	fmt.Printf("Total tracks:  %d\n", total)
	fmt.Printf("Failed:        %d\n", failures)
	fmt.Printf("Analyzed:      %d\n", statusDist[output.StatusAnalyzed])
	fmt.Printf("Undecodable:   %d\n", statusDist[output.StatusUndecodable])
	fmt.Printf("Too short:     %d\n", statusDist[output.StatusTooShort])
	fmt.Println()

	fmt.Println("--- Verdict ---")
	fmt.Printf("  Clean:             %d\n", verdictDist["clean"])
	fmt.Printf("  Suspicious:        %d\n", verdictDist["suspicious"])
	fmt.Printf("  Likely transcode:  %d\n", verdictDist["likely_transcode"])
	fmt.Printf("  Transcode:         %d\n", verdictDist["transcode"])
	fmt.Println()

	fmt.Println("--- Flags Per Track ---")

	maxFlags := 0
	for k := range flagDist {
		maxFlags = max(maxFlags, k)
	}

	for i := range maxFlags + 1 {
		if count, ok := flagDist[i]; ok && count > 0 {
			fmt.Printf("  %d flags:  %d tracks\n", i, count)
		}
	}

	fmt.Println()

	fmt.Println("--- Flags By Type ---")

	breakdowns := make([]*flagBreakdown, 0, len(flagStats))
	for _, bd := range flagStats {
		breakdowns = append(breakdowns, bd)
	}

	slices.SortFunc(breakdowns, func(a, b *flagBreakdown) int {
		return cmp.Or(b.Total-a.Total, cmp.Compare(a.Flag, b.Flag))
	})

	for _, bd := range breakdowns {
		fmt.Printf("  %-24s %d\n", bd.Flag, bd.Total)
	}
}

type flagEntry struct {
	file    string
	score   uint
	verdict string
	details map[string]any
}

//nolint:gochecknoglobals // display order of the measurements
var detailKeys = []string{"upper_drop", "ultrasonic_drop", "ultrasonic_flatness", "high_drop", "rms_upper", "rms_ultrasonic"}

func printFlagDetail(records []digestRecord, flag string) {
	fmt.Println()

	var entries []flagEntry

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil || !slices.Contains(rec.Analysis.Flags, flag) {
			continue
		}

		entry := flagEntry{
			file:    rec.File,
			score:   rec.Analysis.Score,
			verdict: rec.Analysis.Verdict,
			details: rec.Analysis.Details,
		}

		if entry.file == "" {
			entry.file = "(redacted)"
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		fmt.Printf("No tracks flagged %s\n", flag)

		return
	}

	slices.SortStableFunc(entries, func(a, b flagEntry) int {
		return cmp.Compare(b.score, a.score)
	})

	fmt.Printf("=== %s: %d tracks ===\n\n", flag, len(entries))

	for _, entry := range entries {
		fmt.Printf("  %s\n", entry.file)
		fmt.Printf("    score: %d  verdict: %s\n", entry.score, entry.verdict)

		for _, key := range detailKeys {
			if val, ok := entry.details[key]; ok {
				fmt.Printf("    %s: %s\n", key, formatDetailValue(val))
			}
		}

		fmt.Println()
	}
}

func formatDetailValue(value any) string {
	switch val := value.(type) {
	case float64:
		return fmt.Sprintf("%.2f", val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", value)
	}
}
