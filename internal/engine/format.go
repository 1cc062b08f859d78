package engine

import (
	"fmt"
	"strings"
	"time"
)

// FormatTimestamp renders seconds as HH:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds * float64(time.Second))
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	secs := int(d/time.Second) % 60
	millis := int(d/time.Millisecond) % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// RenderTranscript formats segments one per line:
//
//	[00:00:01.000 --> 00:00:04.500] spoken text
//
// Segments with empty text are dropped.
func RenderTranscript(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%s --> %s] %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End), text)
	}
	return b.String()
}
