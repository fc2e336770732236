package fetch

import "time"

// FetchRecord describes one completed fetch.
type FetchRecord struct {
	Source    string
	CachePath string
	FinalPath string
	KeptCache bool
	Duration  time.Duration
	FetchedAt time.Time
}

// HistoryRecorder persists completed-fetch records. Recording failures
// never affect the outcome of a fetch; they are logged and dropped.
type HistoryRecorder interface {
	Record(rec FetchRecord) error
}
