// Package types defines the core data structures for bigtext
package types

import "time"

// Source identifies a text file and the encoding it is stored in
type Source struct {
	Path     string `json:"path"`
	Encoding string `json:"encoding,omitempty"` // Defaults to the configured encoding (utf-8)
}

// Op names an operation recorded in the journal
type Op string

const (
	OpLength       Op = "length"
	OpLengthNoCRLF Op = "length_no_crlf"
	OpIndexOf      Op = "index_of"
	OpReplace      Op = "replace"
	OpReplaceFirst Op = "replace_first"
	OpSplit        Op = "split"
	OpJoin         Op = "join"
	OpInsertString Op = "insert_string"
	OpInsertFile   Op = "insert_file"
	OpToLower      Op = "to_lower"
	OpToUpper      Op = "to_upper"
	OpTrim         Op = "trim"
	OpTrimNoCRLF   Op = "trim_no_crlf"
	OpSubstring    Op = "substring"
)

// Run is one executed operation as stored in the journal
type Run struct {
	ID        string            `json:"id"`
	Op        Op                `json:"op"`
	Source    Source            `json:"source"`
	Params    map[string]string `json:"params,omitempty"`
	Outputs   []string          `json:"outputs,omitempty"`
	Result    string            `json:"result,omitempty"` // Scalar result (length, index) as text
	Error     string            `json:"error,omitempty"`
	Duration  time.Duration     `json:"duration_ns"`
	CreatedAt time.Time         `json:"created_at"`
}

// LengthRecord is a cached character count for a particular file state
type LengthRecord struct {
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	Encoding  string    `json:"encoding"`
	NoCRLF    bool      `json:"no_crlf"`
	Chars     int64     `json:"chars"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JoinPart is one piece appended by Join: either literal text or a file
type JoinPart struct {
	Text string  `json:"text,omitempty"`
	File *Source `json:"file,omitempty"`
}

// LengthRequest is the request payload for counting characters
type LengthRequest struct {
	Source Source `json:"source"`
	NoCRLF bool   `json:"no_crlf,omitempty"`
}

// IndexRequest is the request payload for searching a pattern
type IndexRequest struct {
	Source  Source `json:"source"`
	Pattern string `json:"pattern"`
	From    int64  `json:"from,omitempty"`
}

// ReplaceRequest is the request payload for replace and replace-first
type ReplaceRequest struct {
	Source Source `json:"source"`
	Old    string `json:"old"`
	New    string `json:"new"`
	First  bool   `json:"first,omitempty"`
}

// SplitRequest is the request payload for splitting into several files
type SplitRequest struct {
	Source    Source `json:"source"`
	Separator string `json:"separator"`
	Limit     int    `json:"limit,omitempty"` // Maximum number of parts, <= 0 for no limit
}

// JoinRequest is the request payload for joining text onto a source
type JoinRequest struct {
	Source    Source     `json:"source"`
	Delimiter string     `json:"delimiter"`
	Parts     []JoinPart `json:"parts"`
}

// InsertRequest is the request payload for inserting text or a file
type InsertRequest struct {
	Source Source  `json:"source"`
	Offset int64   `json:"offset"`
	Text   string  `json:"text,omitempty"`
	File   *Source `json:"file,omitempty"` // Takes precedence over Text when set
}

// CaseRequest is the request payload for case conversion
type CaseRequest struct {
	Source Source `json:"source"`
	Upper  bool   `json:"upper"`
	Locale string `json:"locale,omitempty"`
}

// TrimRequest is the request payload for trimming
type TrimRequest struct {
	Source Source `json:"source"`
	NoCRLF bool   `json:"no_crlf,omitempty"`
}

// SubstringRequest is the request payload for extracting [Begin, End)
type SubstringRequest struct {
	Source Source `json:"source"`
	Begin  int64  `json:"begin"`
	End    int64  `json:"end"`
}

// LengthResponse is the response payload for length
type LengthResponse struct {
	Length int64 `json:"length"`
}

// IndexResponse is the response payload for index
type IndexResponse struct {
	Index int64 `json:"index"` // -1 when the pattern does not occur
}

// OutputResponse lists the files written by a mutating operation
type OutputResponse struct {
	Outputs []string `json:"outputs"`
}

// StatsResponse contains statistics about the journal store
type StatsResponse struct {
	TotalRuns     int            `json:"total_runs"`
	RunsByOp      map[string]int `json:"runs_by_op"`
	FailedRuns    int            `json:"failed_runs"`
	CachedLengths int            `json:"cached_lengths"`
	StorageBytes  int64          `json:"storage_bytes"`
}
