package fetch

import "errors"

// DownloadError indicates the retrieval collaborator failed. The
// pipeline aborts before anything was moved.
type DownloadError struct {
	Source string
	Err    error
}

// Error returns the error message
func (e *DownloadError) Error() string {
	if e.Err != nil {
		return "failed to download " + e.Source + ": " + e.Err.Error()
	}
	return "failed to download " + e.Source
}

// Unwrap returns the underlying error
func (e *DownloadError) Unwrap() error {
	return e.Err
}

// MoveError indicates relocating the cache path to the destination
// failed. After a MoveError neither the cache path nor the destination
// should be assumed usable.
type MoveError struct {
	CachePath string
	DestPath  string
	Err       error
}

// Error returns the error message
func (e *MoveError) Error() string {
	msg := "failed to move dataset from " + e.CachePath + " to " + e.DestPath
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *MoveError) Unwrap() error {
	return e.Err
}

// CleanupError indicates removal of the cache path failed. Fetch
// downgrades it to a warning; direct callers of Cleanup receive it.
type CleanupError struct {
	Path string
	Err  error
}

// Error returns the error message
func (e *CleanupError) Error() string {
	if e.Err != nil {
		return "failed to cleanup " + e.Path + ": " + e.Err.Error()
	}
	return "failed to cleanup " + e.Path
}

// Unwrap returns the underlying error
func (e *CleanupError) Unwrap() error {
	return e.Err
}

// IsDownloadError returns true if the error is a DownloadError
func IsDownloadError(err error) bool {
	var de *DownloadError
	return errors.As(err, &de)
}

// IsMoveError returns true if the error is a MoveError
func IsMoveError(err error) bool {
	var me *MoveError
	return errors.As(err, &me)
}

// IsCleanupError returns true if the error is a CleanupError
func IsCleanupError(err error) bool {
	var ce *CleanupError
	return errors.As(err, &ce)
}
