package station

import "time"

// Meta is the immutable identity of a monitoring station, captured from each
// parsed frame. Warning and critical levels are optional; not every station
// has alert thresholds configured upstream.
type Meta struct {
	Code          string
	Name          string
	Basin         string
	WarningLevel  *float64
	CriticalLevel *float64
}

// Record is one telemetry sample. WaterLevel and Rainfall are nil when the
// sensor reported no value for that instant; a gap must stay a gap and never
// become a zero reading.
type Record struct {
	Time       time.Time
	WaterLevel *float64
	Rainfall   *float64
}

// Update is everything extracted from one raw frame: the station identity
// plus the batch of samples it carried, ordered by ascending timestamp.
type Update struct {
	Meta    Meta
	Records []Record
}

// Title renders the station heading the way the upstream dashboard does.
func (m Meta) Title() string {
	if m.Basin == "" {
		return m.Code + " - " + m.Name
	}
	return m.Code + " - " + m.Name + " (" + m.Basin + ")"
}
