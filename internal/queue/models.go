package queue

import "time"

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusDiscovered     Status = "discovered"
	StatusOpened         Status = "opened"
	StatusMetadataParsed Status = "metadata_parsed"
	StatusReconciled     Status = "reconciled"
	StatusNamed          Status = "named"
	StatusRepackaged     Status = "repackaged"
	StatusWritten        Status = "written"
	StatusSkipped        Status = "skipped"
	StatusFailed         Status = "failed"
)

var allStatuses = []Status{
	StatusDiscovered,
	StatusOpened,
	StatusMetadataParsed,
	StatusReconciled,
	StatusNamed,
	StatusRepackaged,
	StatusWritten,
	StatusSkipped,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether an item in this status is done for the run.
func (s Status) Terminal() bool {
	switch s {
	case StatusWritten, StatusSkipped, StatusFailed:
		return true
	default:
		return false
	}
}

// Item represents one archive's pipeline state persisted in SQLite.
type Item struct {
	ID              int64
	SourcePath      string
	SourceKind      string
	Status          Status
	DestinationPath string
	Series          string
	Number          string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary aggregates item counts per lifecycle state for one run.
type Summary struct {
	Total      int
	Processing int
	Written    int
	Skipped    int
	Failed     int
}
