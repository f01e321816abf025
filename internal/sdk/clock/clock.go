// Package clock provides the dual wall-clock/monotonic-clock primitives
// the Span uses: wall time for absolute timestamps, monotonic time for
// duration, so that duration is never affected by clock adjustments.
package clock

import "time"

// WallNanos returns the current wall-clock time as epoch nanoseconds.
func WallNanos() int64 {
	return time.Now().UnixNano()
}

// monoStart anchors the process's monotonic clock so MonoNanos() values
// are stable offsets usable for subtraction within a single process.
var monoStart = time.Now()

// MonoNanos returns a monotonic nanosecond counter suitable for computing
// durations. It is not comparable across processes.
func MonoNanos() int64 {
	return time.Since(monoStart).Nanoseconds()
}

// DurationMs computes a non-negative duration in milliseconds from two
// monotonic nanosecond readings.
func DurationMs(startMonoNs, endMonoNs int64) int64 {
	d := (endMonoNs - startMonoNs) / int64(time.Millisecond)
	if d < 0 {
		return 0
	}
	return d
}
