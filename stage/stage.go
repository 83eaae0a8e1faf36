// Package stage moves analysis files between a blobstore.Store and a local
// work directory. groot reads and writes local files only, so remote inputs
// are fetched before ingestion and outputs are published after the run.
package stage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/internal/fs"
	"github.com/hupe1980/mixgo/internal/resource"
	"golang.org/x/sync/errgroup"
)

// ErrNoWorkDir is returned when a Stager is created without a directory.
var ErrNoWorkDir = errors.New("stage: work directory is required")

// Upload names a local file and its destination blob.
type Upload struct {
	Path string
	Name string
}

// Stats counts completed transfers.
type Stats struct {
	Fetched   int64
	Published int64
	Bytes     int64
}

// Stager transfers blobs concurrently, bounded by a resource.Controller.
type Stager struct {
	store   blobstore.Store
	workDir string
	rc      *resource.Controller
	fsys    fs.FileSystem
	logger  *slog.Logger

	fetched   atomic.Int64
	published atomic.Int64
	bytes     atomic.Int64
}

// Option configures a Stager.
type Option func(*Stager)

// WithController bounds concurrency and throughput. Without one, transfers
// run one at a time without a rate limit.
func WithController(rc *resource.Controller) Option {
	return func(s *Stager) { s.rc = rc }
}

// WithFileSystem replaces the local file system.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(s *Stager) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stager) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Stager between store and workDir.
func New(store blobstore.Store, workDir string, opts ...Option) (*Stager, error) {
	if workDir == "" {
		return nil, ErrNoWorkDir
	}
	s := &Stager{
		store:   store,
		workDir: workDir,
		fsys:    fs.Default,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rc == nil {
		s.rc = resource.NewController(resource.Config{MaxTransfers: 1})
	}
	return s, nil
}

// WorkDir returns the local directory.
func (s *Stager) WorkDir() string { return s.workDir }

// Stats returns the transfer counters.
func (s *Stager) Stats() Stats {
	return Stats{
		Fetched:   s.fetched.Load(),
		Published: s.published.Load(),
		Bytes:     s.bytes.Load(),
	}
}

// LocalPath returns where Fetch places name.
func (s *Stager) LocalPath(name string) string {
	return filepath.Join(s.workDir, filepath.FromSlash(name))
}

// Fetch downloads the named blobs and returns their local paths in order.
func (s *Stager) Fetch(ctx context.Context, names ...string) ([]string, error) {
	paths := make([]string, len(names))
	g, ctx := errgroup.WithContext(ctx)

	for i, name := range names {
		paths[i] = s.LocalPath(name)
		g.Go(func() error {
			if err := s.rc.AcquireTransfer(ctx); err != nil {
				return err
			}
			defer s.rc.ReleaseTransfer()

			n, err := s.fetch(ctx, name, paths[i])
			if err != nil {
				return fmt.Errorf("stage: fetch %s: %w", name, err)
			}
			s.fetched.Add(1)
			s.bytes.Add(n)
			s.logger.Debug("blob fetched", "name", name, "bytes", n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *Stager) fetch(ctx context.Context, name, path string) (int64, error) {
	blob, err := s.store.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = blob.Close() }()

	var src io.Reader
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return 0, err
		}
		src = bytes.NewReader(data)
	} else {
		rc, err := blobstore.NewReader(ctx, blob)
		if err != nil {
			return 0, err
		}
		defer func() { _ = rc.Close() }()
		src = rc
	}

	return s.writeFile(path, func(w io.Writer) (int64, error) {
		return io.Copy(resource.NewRateLimitedWriter(ctx, w, s.rc), src)
	})
}

// Publish uploads local files. Each blob is written with Create so large
// outputs stream instead of being buffered.
func (s *Stager) Publish(ctx context.Context, uploads ...Upload) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, up := range uploads {
		g.Go(func() error {
			if err := s.rc.AcquireTransfer(ctx); err != nil {
				return err
			}
			defer s.rc.ReleaseTransfer()

			n, err := s.publish(ctx, up)
			if err != nil {
				return fmt.Errorf("stage: publish %s: %w", up.Name, err)
			}
			s.published.Add(1)
			s.bytes.Add(n)
			s.logger.Debug("blob published", "name", up.Name, "bytes", n)
			return nil
		})
	}
	return g.Wait()
}

type aborter interface {
	Abort() error
}

func (s *Stager) publish(ctx context.Context, up Upload) (int64, error) {
	f, err := s.fsys.Open(up.Path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	w, err := s.store.Create(ctx, up.Name)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(w, resource.NewRateLimitedReader(ctx, f, s.rc))
	if err != nil {
		if a, ok := w.(aborter); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
		}
		return n, err
	}
	return n, w.Close()
}

// writeFile writes through a temporary file renamed into place on success.
func (s *Stager) writeFile(path string, fill func(io.Writer) (int64, error)) (int64, error) {
	dir := filepath.Dir(path)
	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp := filepath.Join(dir, ".stage-"+filepath.Base(path))
	f, err := s.fsys.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := fill(f)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fsys.Remove(tmp)
		return n, err
	}
	return n, s.fsys.Rename(tmp, path)
}
