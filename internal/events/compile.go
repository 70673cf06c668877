// Package events declares the compile lifecycle events published on the
// event bus. The context of each event carries the run ID.
package events

import "time"

// RunStarted is emitted before the first work item is queued.
type RunStarted struct {
	RootDir string
	Threads int
	Start   time.Time
}

// RunFinished is emitted after the globals pass.
type RunFinished struct {
	RootDir  string
	Files    int
	Errors   int
	Warnings int
	Globals  int
	Duration time.Duration
	// Err is set when the run was aborted, e.g. by cancellation.
	Err error
}

// FileCompiled is emitted once per GraphQL file, whether or not it compiled.
type FileCompiled struct {
	Path string
	// Output is the written file, empty when nothing was written.
	Output   string
	Errors   int
	Warnings int
	Globals  int
	Start    time.Time
	Duration time.Duration
}

// GlobalsWritten is emitted when the aggregate globals module is written.
type GlobalsWritten struct {
	Path  string
	Types int
}
