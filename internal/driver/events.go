package driver

// EventKind описывает тип события прогресса.
type EventKind uint8

const (
	// EventFileStart fires when a worker picks up a file.
	EventFileStart EventKind = iota
	// EventFileDone fires when a file's diagnostics are ready.
	EventFileDone
)

// Event is a progress notification emitted while checking files.
// The callback receiving events may be invoked from multiple worker
// goroutines concurrently.
type Event struct {
	Kind  EventKind
	Path  string
	Index int // position in the deterministic file list
	Total int

	// Filled for EventFileDone.
	Errors   int
	Warnings int
	Skipped  bool
	Cached   bool
}

// ProgressFunc receives progress events; nil disables progress reporting.
type ProgressFunc func(Event)

func (f ProgressFunc) emit(ev Event) {
	if f != nil {
		f(ev)
	}
}
