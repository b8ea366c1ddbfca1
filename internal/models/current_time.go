package models

import "time"

// CurrentTimeModel Current time specific model
type CurrentTimeModel struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
	// OffsetMillis is the correction applied to the host clock.
	OffsetMillis int64 `json:"offsetMillis"`
}

// NewCurrentTime creates a CurrentTimeModel based on a provided time and clock offset.
func NewCurrentTime(t time.Time, offset time.Duration) CurrentTimeModel {
	return CurrentTimeModel{
		ReadableTime: t.Format(time.RFC3339),
		Time:         t.UnixNano() / int64(time.Millisecond),
		OffsetMillis: offset.Milliseconds(),
	}
}
