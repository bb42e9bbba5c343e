//nolint:tagliatelle
package main

// Record is a single line in the JSONL report file.
type Record struct {
	File     string         `json:"file,omitempty"`
	Size     int64          `json:"size,omitempty"`
	Analysis map[string]any `json:"analysis,omitempty"`
	Error    string         `json:"error,omitempty"`
	Timing   *RecordTiming  `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	ReadMs    float64 `json:"read_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	TotalMs   float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File     string          `json:"file,omitempty"`
	Analysis *digestAnalysis `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type digestAnalysis struct {
	Status  string         `json:"status"`
	Score   uint           `json:"score"`
	Verdict string         `json:"verdict"`
	Flags   []string       `json:"flags"`
	Details map[string]any `json:"details"`
}

// flagBreakdown tracks per-flag counts for the digest.
type flagBreakdown struct {
	Flag  string
	Total int
}
