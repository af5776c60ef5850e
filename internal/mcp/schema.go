package mcp

import (
	"github.com/nvandessel/wordcount/internal/report"
	"github.com/nvandessel/wordcount/internal/wordcount"
)

// CountInput defines the input for the wordcount_count tool.
type CountInput struct {
	Text string `json:"text" jsonschema:"Text to count. Line terminators separate words like any other non-letter, non-digit character."`
	Top  int    `json:"top,omitempty" jsonschema:"Only return the N most frequent words (0 returns all)"`
}

// CountOutput is the result of a counting tool.
type CountOutput struct {
	Entries       []report.Entry `json:"entries" jsonschema:"Words ordered by count descending, ties by word ascending"`
	TotalWords    int            `json:"total_words" jsonschema:"Number of words in the input"`
	DistinctWords int            `json:"distinct_words" jsonschema:"Number of distinct words in the input"`
	Report        string         `json:"report" jsonschema:"Rendered report, one 'word, count' line per entry"`
	HistoryID     int64          `json:"history_id,omitempty" jsonschema:"ID of the recorded run, when history recording is enabled"`
}

// CountFileInput defines the input for the wordcount_count_file tool.
type CountFileInput struct {
	Path string `json:"path" jsonschema:"File to count, relative to the server root"`
	Mode string `json:"mode,omitempty" jsonschema:"How the file is read: 'lines' (default) or 'text'"`
	Top  int    `json:"top,omitempty" jsonschema:"Only return the N most frequent words (0 returns all)"`
}

// CompareInput defines the input for the wordcount_compare tool.
type CompareInput struct {
	Left  string `json:"left" jsonschema:"First text"`
	Right string `json:"right" jsonschema:"Second text"`
}

// CompareOutput defines the output for the wordcount_compare tool.
type CompareOutput struct {
	Equal       bool                   `json:"equal" jsonschema:"Whether both texts have exactly the same word counts"`
	Differences []wordcount.Difference `json:"differences,omitempty" jsonschema:"Words whose counts differ (0 means absent)"`
}

// HistoryInput defines the input for the wordcount_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs to return, newest first (default 20)"`
}

// HistoryOutput defines the output for the wordcount_history tool.
type HistoryOutput struct {
	Runs []RunSummary `json:"runs" jsonschema:"Recorded counting runs, newest first"`
}

// RunSummary is a recorded run as reported to MCP clients.
type RunSummary struct {
	ID            int64  `json:"id"`
	Source        string `json:"source"`
	Mode          string `json:"mode"`
	TotalWords    int    `json:"total_words"`
	DistinctWords int    `json:"distinct_words"`
	CreatedAt     string `json:"created_at" jsonschema:"RFC 3339 timestamp"`
}
