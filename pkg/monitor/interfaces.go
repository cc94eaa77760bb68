package monitor

import (
	"context"

	"riverwatch/pkg/station"
)

// StreamConn is one live connection to a station feed. ReadMessage blocks
// until the next frame, a read timeout, or Close.
type StreamConn interface {
	ReadMessage() ([]byte, error)
	Close() error
}

// StreamDialer opens a StreamConn for a station URL.
type StreamDialer interface {
	Dial(ctx context.Context, url string) (StreamConn, error)
}

// Renderer turns a window snapshot into an image artifact and returns its
// path.
type Renderer interface {
	Render(meta station.Meta, records []station.Record) (string, error)
}

// Uploader publishes an image artifact and returns a publicly retrievable
// URL.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Notifier delivers an image URL to the configured messaging channel.
// Idempotency is the notifier's problem.
type Notifier interface {
	Notify(ctx context.Context, imageURL string) error
}

// SnapshotSource hands out copies of a station's current window.
type SnapshotSource interface {
	Snapshot() []station.Record
}

// MetaSource reports the station identity once the feed has delivered it.
type MetaSource interface {
	Meta() (station.Meta, bool)
}
