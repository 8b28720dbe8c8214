package dirstat

import (
	"sync"
	"time"

	"github.com/idelchi/dirtree/internal/listing"
)

// Engine selects the traversal backend.
type Engine string

const (
	// EnginePool fans out one task per subdirectory onto a bounded worker pool.
	EnginePool Engine = "pool"
	// EngineFastwalk delegates traversal to fastwalk.
	EngineFastwalk Engine = "fastwalk"
)

// Engines lists the accepted engines.
//
//nolint:gochecknoglobals // Config constant
var Engines = []Engine{EnginePool, EngineFastwalk}

// Stats holds aggregate statistics for a directory scan.
type Stats struct {
	// Path is the scanned root.
	Path string `json:"path" yaml:"path"`
	// FileCount is the number of non-directory entries found under the root.
	FileCount uint64 `json:"file_count" yaml:"file_count"`
	// TotalBytes is the cumulative size of those entries.
	TotalBytes uint64 `json:"total_bytes" yaml:"total_bytes"`
	// DirCount is the number of subdirectories found under the root.
	DirCount uint64 `json:"dir_count" yaml:"dir_count"`
	// ErrorCount is the number of entries or directories that could not be read.
	ErrorCount uint64 `json:"error_count" yaml:"error_count"`
	// Skipped lists the directories that could not be listed.
	Skipped []listing.Skipped `json:"skipped" yaml:"skipped"`
	// Workers is the pool capacity used.
	Workers int `json:"workers" yaml:"workers"`
	// Engine is the traversal backend used.
	Engine Engine `json:"engine" yaml:"engine"`
	// Elapsed is the total time taken for the scan.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Accumulator aggregates counts from concurrent workers.
// All fields are guarded by one mutex, so a file's count and size are always
// updated together.
type Accumulator struct {
	mu         sync.Mutex
	fileCount  uint64
	totalBytes uint64
	dirCount   uint64
	errorCount uint64
	skipped    []listing.Skipped
}

// AddFile records one non-directory entry of the given size.
func (a *Accumulator) AddFile(size uint64) {
	a.mu.Lock()
	a.fileCount++
	a.totalBytes += size
	a.mu.Unlock()
}

// AddDir records one discovered subdirectory.
func (a *Accumulator) AddDir() {
	a.mu.Lock()
	a.dirCount++
	a.mu.Unlock()
}

// AddError records an entry whose metadata could not be read.
func (a *Accumulator) AddError() {
	a.mu.Lock()
	a.errorCount++
	a.mu.Unlock()
}

// Skip records a directory that could not be listed.
func (a *Accumulator) Skip(path string, err error) {
	a.mu.Lock()
	a.errorCount++
	a.skipped = append(a.skipped, listing.Skipped{Path: path, Error: err.Error()})
	a.mu.Unlock()
}

// Snapshot returns the current file count and total size.
// Values read before the scan has finished are only a progress indication.
func (a *Accumulator) Snapshot() (files, bytes uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.fileCount, a.totalBytes
}

// finalize produces Stats from the collected data.
func (a *Accumulator) finalize() *Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	skipped := make([]listing.Skipped, len(a.skipped))
	copy(skipped, a.skipped)

	return &Stats{
		FileCount:  a.fileCount,
		TotalBytes: a.totalBytes,
		DirCount:   a.dirCount,
		ErrorCount: a.errorCount,
		Skipped:    skipped,
	}
}
