package constants

// Session / context keys
const (
	ContextKeyUserID = "user_id"
)

// Pagination bounds
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
)

// Tracker
const (
	// DateFormat is the calendar-date layout tracker entries are keyed by.
	DateFormat = "2006-01-02"

	// PausedEntriesLimit caps the paused-entries listing. Display window,
	// not a storage limit.
	PausedEntriesLimit = 10

	// MaxBulkEntries bounds a single bulk-create call after dates expansion.
	MaxBulkEntries = 500
)
