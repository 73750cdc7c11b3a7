package workers

import "runtime"

// MaxTranscodeWorkers caps concurrent ffmpeg processes. A batch never has
// more than one encode per tier, so extra workers would sit idle.
const MaxTranscodeWorkers = 3

// ForTranscode returns the tier encode concurrency. A positive configured
// value wins, otherwise the count follows GOMAXPROCS. Both are capped by
// MaxTranscodeWorkers and never drop below one.
func ForTranscode(configured int) int {
	n := configured
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return clamp(n, 1, MaxTranscodeWorkers)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
