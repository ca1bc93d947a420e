package snapshot

import (
	"context"

	"github.com/hupe1980/meshgo/resource"
)

// ThrottledStore limits the archive throughput of another Store.
type ThrottledStore struct {
	Store
	rc *resource.Controller
}

// WithRateLimit wraps s so that archive transfers share a budget of
// bytesPerSec. A non-positive limit returns s unchanged.
func WithRateLimit(s Store, bytesPerSec int64) Store {
	if bytesPerSec <= 0 {
		return s
	}
	return NewThrottledStore(s, resource.NewController(resource.Config{IOLimitBytesPerSec: bytesPerSec}))
}

// NewThrottledStore wraps s with the IO budget of rc.
func NewThrottledStore(s Store, rc *resource.Controller) *ThrottledStore {
	return &ThrottledStore{Store: s, rc: rc}
}

// Put waits for the IO budget before writing.
func (t *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := t.rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	return t.Store.Put(ctx, name, data)
}

// Get charges the budget for the bytes read.
func (t *ThrottledStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := t.Store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := t.rc.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}
