// Package metrics exposes conversion counters and latencies.
package metrics

import "time"

// FileOutcome labels what happened to one html file.
type FileOutcome string

const (
	FileConverted FileOutcome = "converted"
	FileSkipped   FileOutcome = "skipped"
	FileFailed    FileOutcome = "failed"
	FileCleaned   FileOutcome = "cleaned"
)

// Recorder receives build observations. NoopRecorder is used when metrics
// are not served.
type Recorder interface {
	ObserveFile(outcome FileOutcome, d time.Duration)
	ObserveBuild(dir string, d time.Duration, failed bool)
	IncSnippets(format string, n int)
	AddResourcesCopied(n int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveFile(FileOutcome, time.Duration)   {}
func (NoopRecorder) ObserveBuild(string, time.Duration, bool) {}
func (NoopRecorder) IncSnippets(string, int)                  {}
func (NoopRecorder) AddResourcesCopied(int)                   {}
