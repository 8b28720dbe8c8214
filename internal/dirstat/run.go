package dirstat

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/idelchi/dirtree/internal/debug"
	"github.com/idelchi/dirtree/internal/listing"
	"github.com/idelchi/dirtree/internal/pool"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Options configures a scan.
type Options struct {
	// Path is the directory to scan.
	Path string
	// Workers is the worker pool capacity.
	Workers int
	// Engine selects the traversal backend (default pool).
	Engine Engine
	// OnError decides what happens when a subdirectory cannot be listed.
	OnError listing.ErrorPolicy
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Follow descends into symlinks that resolve to directories.
	Follow bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
}

//nolint:gochecknoglobals // Replaced in tests
var listDir = listing.List

// scanner holds the state shared by all tasks of one scan.
type scanner struct {
	acc      *Accumulator
	excluder listing.Excluder
	policy   listing.ErrorPolicy
	follow   bool
	log      debug.Logger

	// failed stops further fan-out once a listing failed under the Fail policy.
	failed atomic.Bool
	mu     sync.Mutex
	errs   []error
}

// startProgressReporter invokes hook(files, bytes) on each tick until done is closed.
func startProgressReporter(done <-chan struct{}, acc *Accumulator, hook func(uint64, uint64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(acc.Snapshot())
			case <-done:
				return
			}
		}
	}()
}

// Run scans the tree at opt.Path and returns aggregated statistics.
//
// With EnginePool the calling goroutine lists the root itself and every
// subdirectory becomes a task on a pool of opt.Workers goroutines; tasks
// submit further tasks for their own subdirectories. Run returns once the
// pool has drained. A scan cannot be cancelled once started.
//
// Listing failures below the root are handled according to opt.OnError.
// A failure to access or list the root is always returned. A root that is
// not a directory is not a failure: it is counted as a single file.
//
// With opt.Follow, symlinks to directories are descended into unless they
// lead back to a directory already being scanned on the same path.
func Run(opt Options, progressHook func(files, bytes uint64)) (*Stats, error) {
	if opt.Path == "" {
		opt.Path = "."
	}

	opt.Path = filepath.Clean(opt.Path)

	if opt.Engine == "" {
		opt.Engine = EnginePool
	}

	if opt.Workers < 1 {
		return nil, fmt.Errorf("%w: got %d", pool.ErrInvalidSize, opt.Workers)
	}

	if !slices.Contains(Engines, opt.Engine) {
		return nil, fmt.Errorf("invalid engine %q: must be one of %v", opt.Engine, Engines)
	}

	policy, err := listing.ParseErrorPolicy(string(opt.OnError))
	if err != nil {
		return nil, err
	}

	excluder, err := listing.NewExcluder(opt.Excludes)
	if err != nil {
		return nil, err
	}

	s := &scanner{
		acc:      &Accumulator{},
		excluder: excluder,
		policy:   policy,
		follow:   opt.Follow,
		log:      debug.New(opt.Debug),
	}

	info, err := os.Stat(opt.Path)
	if err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	}

	done := make(chan struct{})
	defer close(done)

	startProgressReporter(done, s.acc, progressHook, opt.ProgressInterval)

	start := time.Now()

	switch {
	case !info.IsDir():
		s.acc.AddFile(uint64(info.Size())) //nolint:gosec // Sizes reported by stat are never negative
	case opt.Engine == EngineFastwalk:
		err = s.walk(opt.Path, opt.Workers)
	default:
		err = s.scan(opt.Path, opt.Workers)
	}

	if err != nil {
		return nil, err
	}

	stats := s.acc.finalize()

	stats.Path = opt.Path
	stats.Workers = opt.Workers
	stats.Engine = opt.Engine
	stats.Elapsed = time.Since(start)

	return stats, nil
}

// scan runs the pool engine.
func (s *scanner) scan(root string, workers int) error {
	p, err := pool.New(pool.Options{
		Size: workers,
		Log:  s.log,
		OnPanic: func(worker string, v any) {
			s.acc.AddError()
			s.fail(fmt.Errorf("scan task panicked on worker %s: %v", worker, v))
		},
	})
	if err != nil {
		return err
	}
	defer p.Close()

	chain, _, err := s.descend(nil, root)
	if err != nil {
		return fmt.Errorf("accessing path %q: %w", root, err)
	}

	entries, err := listDir(root, listing.Native, s.follow)
	if err != nil {
		return fmt.Errorf("listing %q: %w", root, err)
	}

	s.visit(p, entries, chain)

	p.Wait()

	return s.err(root)
}

// visit accounts for the entries of one directory and submits a task for
// each subdirectory. chain is only maintained when following symlinks.
func (s *scanner) visit(p *pool.Pool, entries []listing.Entry, chain listing.Chain) {
	for _, entry := range s.excluder.Filter(entries, s.logExcluded) {
		switch {
		case entry.IsDir():
			s.acc.AddDir()

			if s.failed.Load() {
				continue
			}

			dir := entry.Path

			next, ok, err := s.descend(chain, dir)
			if err != nil {
				s.skip(dir, err)

				continue
			}

			if !ok {
				s.log.Printf("not descending into %s: already on the current path", dir)

				continue
			}

			if err := p.Submit(func() { s.scanDir(p, dir, next) }); err != nil {
				s.fail(fmt.Errorf("submitting %q: %w", dir, err))
			}
		case entry.Err != nil:
			s.log.Printf("skipping entry %s: %v", entry.Path, entry.Err)
			s.acc.AddError()
		default:
			s.acc.AddFile(entry.Size)
		}
	}
}

// scanDir is the body of one pool task.
func (s *scanner) scanDir(p *pool.Pool, dir string, chain listing.Chain) {
	entries, err := listDir(dir, listing.Native, s.follow)
	if err != nil {
		s.skip(dir, err)

		return
	}

	s.visit(p, entries, chain)
}

// walk runs the fastwalk engine, feeding the same accumulator.
//
//nolint:varnamelen // d is standard for DirEntry
func (s *scanner) walk(root string, workers int) error {
	conf := &fastwalk.Config{
		Follow:     s.follow,
		NumWorkers: workers,
	}

	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			s.skip(path, err)

			if s.policy == listing.Fail {
				return err
			}

			return nil
		}

		if path == root {
			return nil
		}

		isDir := d.IsDir()

		// fastwalk descends into followed links itself once this returns nil.
		if s.follow && d.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				isDir = true
			}
		}

		if re := s.excluder.Match(path, isDir); re != nil {
			s.log.Printf("excluding %s (matched regex: %s)", filepath.ToSlash(path), re.String())

			if isDir {
				return filepath.SkipDir
			}

			return nil
		}

		if isDir {
			s.acc.AddDir()

			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			s.log.Printf("skipping entry %s: %v", path, err)
			s.acc.AddError()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		s.acc.AddFile(uint64(fileInfo.Size())) //nolint:gosec // Sizes reported by lstat are never negative

		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walking %q: %w", root, walkErr)
	}

	return nil
}

// descend extends chain by dir when following symlinks.
func (s *scanner) descend(chain listing.Chain, dir string) (listing.Chain, bool, error) {
	if !s.follow {
		return chain, true, nil
	}

	return chain.Descend(dir)
}

// skip handles a directory that could not be listed.
func (s *scanner) skip(dir string, err error) {
	s.log.Printf("error listing directory %s: %v", dir, err)
	s.acc.Skip(dir, err)

	if s.policy == listing.Fail {
		s.fail(err)
	}
}

// fail records err and stops further fan-out if the policy is Fail.
func (s *scanner) fail(err error) {
	if s.policy != listing.Fail {
		return
	}

	s.failed.Store(true)

	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *scanner) err(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.errs) == 0 {
		return nil
	}

	return fmt.Errorf("scanning %q: %w", root, errors.Join(s.errs...))
}

func (s *scanner) logExcluded(entry listing.Entry, re *regexp.Regexp) {
	s.log.Printf("excluding %s (matched regex: %s)", filepath.ToSlash(entry.Path), re.String())
}
