package sniper

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/events"
	"github.com/imagehubcc/titan-sniper/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *events.Broker) {
	t.Helper()
	st, err := store.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)
	return NewManager(st, broker, zap.NewNop()), broker
}

// fakeCaller routes provider calls by path. Handlers fill out by JSON
// round-trip, mirroring how the real client decodes responses.
type fakeCaller struct {
	mu        sync.Mutex
	getFn     func(path string, out interface{}) error
	postFn    func(path string, payload, out interface{}) error
	getPaths  []string
	postPaths []string
	payloads  map[string][]interface{}
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{payloads: make(map[string][]interface{})}
}

func (f *fakeCaller) Get(_ context.Context, path string, out interface{}) error {
	f.mu.Lock()
	f.getPaths = append(f.getPaths, path)
	fn := f.getFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(path, out)
}

func (f *fakeCaller) Post(_ context.Context, path string, payload, out interface{}) error {
	f.mu.Lock()
	f.postPaths = append(f.postPaths, path)
	f.payloads[path] = append(f.payloads[path], payload)
	fn := f.postFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(path, payload, out)
}

func (f *fakeCaller) gets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.getPaths...)
}

func (f *fakeCaller) posts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.postPaths...)
}

// respond writes v into out the way the HTTP client would.
func respond(out, v interface{}) error {
	if out == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeNotifier) Send(_ context.Context, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return true
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

