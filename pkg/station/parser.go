package station

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ParseError marks a frame that could not be turned into an Update. It is a
// data-level failure: the sample is dropped and counted, never retried.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// frame is the outer websocket payload. The upstream sometimes delivers the
// message field as a JSON-encoded string rather than an object, so it is kept
// raw and unwrapped in decodeMessage.
type frame struct {
	Message json.RawMessage `json:"message"`
}

type message struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Basin         basin    `json:"basin"`
	WarningLevel  *float64 `json:"water_level_warning"`
	CriticalLevel *float64 `json:"water_level_critical"`
	Values        values   `json:"values"`
}

type basin struct {
	Name string `json:"name"`
}

type values struct {
	WaterLevelGraph map[string]series `json:"water_level_graph"`
	RainGraph       series            `json:"rain_graph"`
}

type series struct {
	Value []float64 `json:"value"`
	Time  []int64   `json:"time"`
}

// Parse turns one raw frame from the station feed into an Update. Unknown
// fields are ignored. A frame without any timestamped water level data is a
// ParseError; timestamps are unix seconds, normalized to UTC.
func Parse(raw []byte) (*Update, error) {
	raw = unquote(raw)

	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &ParseError{Reason: "malformed frame", Err: err}
	}
	if len(f.Message) == 0 {
		return nil, &ParseError{Reason: "frame has no message field"}
	}

	var msg message
	if err := json.Unmarshal(unquote(f.Message), &msg); err != nil {
		return nil, &ParseError{Reason: "malformed message", Err: err}
	}

	levels := msg.Values.WaterLevelGraph["0"]
	if len(levels.Value) == 0 || len(levels.Time) == 0 {
		return nil, &ParseError{Reason: "water_level_graph series is missing"}
	}

	samples := make(map[int64]*Record)
	mergeSeries(samples, levels, func(r *Record, v float64) { r.WaterLevel = &v })
	mergeSeries(samples, msg.Values.RainGraph, func(r *Record, v float64) { r.Rainfall = &v })

	records := make([]Record, 0, len(samples))
	for _, r := range samples {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Time.Before(records[j].Time) })

	return &Update{
		Meta: Meta{
			Code:          msg.Code,
			Name:          msg.Name,
			Basin:         msg.Basin.Name,
			WarningLevel:  msg.WarningLevel,
			CriticalLevel: msg.CriticalLevel,
		},
		Records: records,
	}, nil
}

// mergeSeries folds one value/time series into the sample map, trimming to
// the shorter of the two arrays the way the upstream dashboard does.
func mergeSeries(samples map[int64]*Record, s series, set func(*Record, float64)) {
	n := len(s.Value)
	if len(s.Time) < n {
		n = len(s.Time)
	}
	for i := 0; i < n; i++ {
		ts := s.Time[i]
		rec, ok := samples[ts]
		if !ok {
			rec = &Record{Time: time.Unix(ts, 0).UTC()}
			samples[ts] = rec
		}
		set(rec, s.Value[i])
	}
}

// unquote unwraps a JSON-string-encoded document. The feed double-encodes
// both the whole frame and the message field often enough that both paths
// have to tolerate it.
func unquote(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) < 2 || trimmed[0] != '"' {
		return trimmed
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return trimmed
	}
	return []byte(inner)
}
