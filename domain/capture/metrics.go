package capture

import "time"

// CaptureStats summarises capturer behaviour for instrumentation.
type CaptureStats struct {
	Captures         uint64
	Failures         uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	Sequence         uint64
	BufferBytes      int
}
