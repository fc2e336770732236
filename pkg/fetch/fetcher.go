// Package fetch turns a dataset identifier into a local directory path.
// It sequences three steps — download through a Retriever, relocation
// into a destination tree, removal of the download cache — with defined
// behavior when the destination exists, when a step fails, and when
// cleanup fails after a successful move.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/datafetch/internal/pathutil"
)

// Config configures a Fetcher. Only Source is meaningful to set; the
// rest default as documented.
type Config struct {
	// Source is the dataset identifier, e.g. "owner/name". An empty or
	// separator-only source is accepted: the short name is then empty
	// and the destination collapses to DestBaseDir itself.
	Source string

	// DestBaseDir is the base directory datasets are placed under.
	// Defaults to <cwd>/kaggle/input.
	DestBaseDir string

	// Logger receives informational, warning and error events. Nil
	// means logging is a no-op.
	Logger *zap.Logger

	// History, when non-nil, records completed fetches.
	History HistoryRecorder
}

// FetchOptions controls a single Fetch call.
type FetchOptions struct {
	// KeepCache leaves the download cache in place after the move.
	KeepCache bool

	// DestPath overrides the derived destination path.
	DestPath string
}

// Fetcher orchestrates the download/move/cleanup pipeline for one
// dataset source. Construction is cheap; all work happens in the
// operation methods. Fetcher is not safe for concurrent use, and
// concurrent fetchers targeting the same destination race: the last
// move to complete wins.
type Fetcher struct {
	source      string
	shortName   string
	destBaseDir string
	destPath    string
	retriever   Retriever
	history     HistoryRecorder
	logger      *zap.Logger

	// overridable for tests
	relocate  func(src, dst string) error
	removeAll func(path string) error
}

// New creates a Fetcher for the given retriever and configuration.
func New(retriever Retriever, cfg Config) (*Fetcher, error) {
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}

	baseDir := cfg.DestBaseDir
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		baseDir = filepath.Join(cwd, "kaggle", "input")
	}
	baseDir, err := pathutil.Normalize(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize destination base dir: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Short name is the text after the last separator; "owner/name"
	// yields "name".
	shortName := cfg.Source[strings.LastIndex(cfg.Source, "/")+1:]

	return &Fetcher{
		source:      cfg.Source,
		shortName:   shortName,
		destBaseDir: baseDir,
		destPath:    filepath.Join(baseDir, shortName),
		retriever:   retriever,
		history:     cfg.History,
		logger:      logger,
		relocate:    relocate,
		removeAll:   os.RemoveAll,
	}, nil
}

// Source returns the dataset identifier.
func (f *Fetcher) Source() string {
	return f.source
}

// ShortName returns the dataset name derived from the source.
func (f *Fetcher) ShortName() string {
	return f.shortName
}

// DestPath returns the derived destination path.
func (f *Fetcher) DestPath() string {
	return f.destPath
}

// Download retrieves the dataset and returns the normalized cache path.
// Any retriever failure is wrapped in a DownloadError.
func (f *Fetcher) Download(ctx context.Context) (string, error) {
	f.logger.Info("downloading dataset", zap.String("source", f.source))

	cachePath, err := f.retriever.Retrieve(ctx, f.source)
	if err != nil {
		f.logger.Error("download failed",
			zap.String("source", f.source),
			zap.Error(err))
		return "", &DownloadError{Source: f.source, Err: err}
	}

	cachePath, err = pathutil.Normalize(cachePath)
	if err != nil {
		f.logger.Error("download failed",
			zap.String("source", f.source),
			zap.Error(err))
		return "", &DownloadError{Source: f.source, Err: err}
	}

	f.logger.Info("dataset downloaded",
		zap.String("source", f.source),
		zap.String("cache_path", cachePath))
	return cachePath, nil
}

// Move relocates cachePath to destPath, creating the destination's
// parent and removing any existing entry at the destination first
// (last write wins). An empty destPath means the derived destination.
// Failures are wrapped in a MoveError; after a MoveError neither path
// should be assumed usable.
func (f *Fetcher) Move(cachePath, destPath string) (string, error) {
	dest := destPath
	if dest == "" {
		dest = f.destPath
	}

	f.logger.Info("moving dataset",
		zap.String("from", cachePath),
		zap.String("to", dest))

	if _, err := pathutil.EnsureDir(filepath.Dir(dest)); err != nil {
		f.logger.Error("move failed", zap.Error(err))
		return "", &MoveError{CachePath: cachePath, DestPath: dest, Err: err}
	}

	if _, err := os.Lstat(dest); err == nil {
		f.logger.Warn("destination already exists, removing it",
			zap.String("path", dest))
		if err := f.removeAll(dest); err != nil {
			f.logger.Error("move failed", zap.Error(err))
			return "", &MoveError{CachePath: cachePath, DestPath: dest, Err: err}
		}
	}

	if err := f.relocate(cachePath, dest); err != nil {
		f.logger.Error("move failed", zap.Error(err))
		return "", &MoveError{CachePath: cachePath, DestPath: dest, Err: err}
	}

	f.logger.Info("dataset moved", zap.String("path", dest))
	return dest, nil
}

// Cleanup removes the cache path recursively. A missing path is not an
// error: Cleanup returns false with a warning log. Removal failures are
// wrapped in a CleanupError.
func (f *Fetcher) Cleanup(cachePath string) (bool, error) {
	if _, err := os.Lstat(cachePath); os.IsNotExist(err) {
		f.logger.Warn("cache path does not exist, nothing to clean",
			zap.String("path", cachePath))
		return false, nil
	}

	f.logger.Info("cleaning up cache", zap.String("path", cachePath))
	if err := f.removeAll(cachePath); err != nil {
		f.logger.Error("cleanup failed",
			zap.String("path", cachePath),
			zap.Error(err))
		return false, &CleanupError{Path: cachePath, Err: err}
	}

	f.logger.Info("cleanup successful", zap.String("path", cachePath))
	return true, nil
}

// Fetch runs the full pipeline: download, move, and — unless the cache
// is kept or the cache path equals the final path — cleanup. A cleanup
// failure after a successful move is logged as a warning and swallowed;
// Fetch's success is defined solely by a completed move.
func (f *Fetcher) Fetch(ctx context.Context, opts FetchOptions) (string, error) {
	start := time.Now()

	cachePath, err := f.Download(ctx)
	if err != nil {
		return "", err
	}

	finalPath, err := f.Move(cachePath, opts.DestPath)
	if err != nil {
		return "", err
	}

	if !opts.KeepCache && cachePath != finalPath {
		if _, err := f.Cleanup(cachePath); err != nil {
			f.logger.Warn("cleanup failed but dataset was moved",
				zap.String("cache_path", cachePath),
				zap.Error(err))
		}
	}

	if f.history != nil {
		rec := FetchRecord{
			Source:    f.source,
			CachePath: cachePath,
			FinalPath: finalPath,
			KeptCache: opts.KeepCache,
			Duration:  time.Since(start),
			FetchedAt: time.Now().UTC(),
		}
		if err := f.history.Record(rec); err != nil {
			f.logger.Warn("failed to record fetch history", zap.Error(err))
		}
	}

	return finalPath, nil
}

// FetchDataset fetches a dataset in one call using default options.
func FetchDataset(ctx context.Context, retriever Retriever, source, destDir string) (string, error) {
	f, err := New(retriever, Config{Source: source, DestBaseDir: destDir})
	if err != nil {
		return "", err
	}
	return f.Fetch(ctx, FetchOptions{})
}

// relocate renames src to dst, falling back to copy-then-delete when
// the rename crosses filesystems.
func relocate(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := copyTree(src, dst); err != nil {
		return fmt.Errorf("failed to copy across filesystems: %w", err)
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return nil
}

// copyTree copies a file or directory tree from src to dst, preserving
// file modes.
func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if err := copyTree(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
