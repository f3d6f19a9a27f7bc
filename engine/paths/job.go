package paths

import (
	"time"

	"github.com/klei1984/max-sub005/engine/pathfind"
)

// Job is one search handed to the worker. The context owns a private copy
// of the access map, so Execute touches no shared state.
type Job struct {
	ID      uint32
	Request *PathRequest
	Context *pathfind.PathSearchContext
	Start   pathfind.Point

	// Elapsed is written by Execute and read after the job is polled
	Elapsed time.Duration
}

// Execute runs the search
func (j *Job) Execute() *pathfind.PathResult {
	began := time.Now()
	res := j.Context.RunSearch()
	j.Elapsed = time.Since(began)
	return res
}
