package paths

// DebugMode selects how much the manager reports about finished searches
type DebugMode uint8

const (
	DebugOff DebugMode = iota
	// DebugStatistics logs search counters for every finished job
	DebugStatistics
	// DebugDrawSearches also keeps the last search context for display
	DebugDrawSearches
	debugModes
)

var debugNames = [...]string{"off", "statistics", "draw searches"}

func (d DebugMode) String() string {
	if d < debugModes {
		return debugNames[d]
	}
	return "unknown"
}

// Next cycles to the following mode
func (d DebugMode) Next() DebugMode { return (d + 1) % debugModes }

// ParseDebugMode maps a configuration name to a mode
func ParseDebugMode(s string) (DebugMode, bool) {
	for i, n := range debugNames {
		if n == s {
			return DebugMode(i), true
		}
	}
	return DebugOff, false
}
