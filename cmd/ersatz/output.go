//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/ersatz"
	"github.com/farcloser/ersatz/internal/output"
)

// flagInfo explains each flag of the stock rule table.
//
//nolint:gochecknoglobals // configuration data, effectively const
var flagInfo = map[string]string{
	"severe_hf_damage":        "17-20 kHz is more than 40 dB below 10-15 kHz, typical of 128k MP3",
	"hf_cutoff_detected":      "17-20 kHz is more than 15 dB below 10-15 kHz, typical of 192k or lower",
	"possible_lossy_origin":   "17-20 kHz is more than 10 dB below 10-15 kHz",
	"cliff_at_20khz":          "energy collapses by more than 40 dB above 20 kHz, typical of 320k encoders",
	"steep_20khz_cutoff":      "energy falls by more than 25 dB above 20 kHz",
	"possible_320k_origin":    "energy falls by more than 15 dB above 20 kHz",
	"dead_ultrasonic_band":    "19-21 kHz carries no noise-like content",
	"weak_ultrasonic_content": "19-21 kHz carries little noise-like content",
	"steep_hf_rolloff":        "15-20 kHz is more than 48 dB below the full band",
	"silent_17k+":             "17-20 kHz is below -50 dB",
	"silent_20k+":             "20-22 kHz is below -70 dB",
}

func outputResult(filePath string, result *ersatz.Result, analysisErr error, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any
	if debug {
		meta = output.ResultToMap(result, analysisErr)
	} else {
		meta = buildFriendlyOutput(result, analysisErr)
	}

	data := &format.Data{
		Object: filePath,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// buildFriendlyOutput creates a user-friendly summary of the analysis result.
func buildFriendlyOutput(result *ersatz.Result, analysisErr error) map[string]any {
	status := output.Status(analysisErr)

	meta := map[string]any{
		"status":  status,
		"summary": fmt.Sprintf("score %d (%s)", result.Score, result.Verdict),
	}

	if status != output.StatusAnalyzed {
		meta["summary"] = fmt.Sprintf("not analyzed: %v", analysisErr)

		return meta
	}

	flags := make([]any, 0, len(result.Flags))
	for _, flag := range result.Flags {
		line := flag
		if info, ok := flagInfo[flag]; ok {
			line = fmt.Sprintf("%s: %s", flag, info)
		}

		flags = append(flags, line)
	}

	meta["flags"] = flags
	meta["properties"] = map[string]any{
		"upper_drop":          fmt.Sprintf("%.1f dB", result.Details.UpperDrop),
		"ultrasonic_drop":     fmt.Sprintf("%.1f dB", result.Details.UltrasonicDrop),
		"ultrasonic_flatness": fmt.Sprintf("%.2f", result.Details.UltrasonicFlatness),
		"high_drop":           fmt.Sprintf("%.1f dB", result.Details.HighDrop),
	}

	return meta
}
