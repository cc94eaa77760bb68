package testutil

import (
	"context"
	"sync"

	"riverwatch/pkg/station"
)

// RecordingRenderer satisfies the monitor's Renderer interface and records
// every call. Block can be set to hold renders open so tests can observe
// overlapping cycles.
type RecordingRenderer struct {
	mu    sync.Mutex
	calls []RenderCall

	Path  string
	Err   error
	Block chan struct{}
}

// RenderCall captures the arguments of one Render invocation.
type RenderCall struct {
	Meta    station.Meta
	Records []station.Record
}

func (r *RecordingRenderer) Render(meta station.Meta, records []station.Record) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, RenderCall{Meta: meta, Records: records})
	block := r.Block
	r.mu.Unlock()
	if block != nil {
		<-block
	}
	return r.Path, r.Err
}

func (r *RecordingRenderer) Calls() []RenderCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RenderCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// RecordingUploader satisfies the monitor's Uploader interface.
type RecordingUploader struct {
	mu    sync.Mutex
	paths []string

	URL string
	Err error
}

func (u *RecordingUploader) Upload(_ context.Context, path string) (string, error) {
	u.mu.Lock()
	u.paths = append(u.paths, path)
	u.mu.Unlock()
	return u.URL, u.Err
}

func (u *RecordingUploader) Uploads() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, len(u.paths))
	copy(out, u.paths)
	return out
}

// RecordingNotifier satisfies the monitor's Notifier interface.
type RecordingNotifier struct {
	mu   sync.Mutex
	urls []string

	Err error
}

func (n *RecordingNotifier) Notify(_ context.Context, imageURL string) error {
	n.mu.Lock()
	n.urls = append(n.urls, imageURL)
	n.mu.Unlock()
	return n.Err
}

func (n *RecordingNotifier) Notifications() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.urls))
	copy(out, n.urls)
	return out
}
