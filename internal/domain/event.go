package domain

// RawReport is one unparsed line handed to the analysis pipeline.
type RawReport struct {
	Line       string
	LineNumber int
	Source     string // upload or file name, for logging
	Oversized  bool   // line exceeded the reader's length limit; Line is empty
}

// LimitVerdict ties a verdict to the limit that produced it.
type LimitVerdict struct {
	LimitID   string `json:"limit_id"`
	LimitName string `json:"limit_name"`
	Verdict
}

// AnalyzedReport is a parsed observation with its verdict against every
// configured limit. It is the unit the pipeline publishes.
type AnalyzedReport struct {
	Observation Observation    `json:"observation"`
	Verdicts    []LimitVerdict `json:"verdicts"`
}
