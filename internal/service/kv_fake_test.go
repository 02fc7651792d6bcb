package service

import (
	"context"
	"errors"
	"sync"

	"github.com/khsolheim/tms-mobile-sync/internal/store"
)

// fakeKV is an in-memory KeyValueRepository for service tests. failPuts
// makes every Put fail to exercise the best-effort persistence contract.
type fakeKV struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	failPuts bool
	putCalls int
}

func newFakeKV() *fakeKV {
	return &fakeKV{blobs: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.blobs[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.failPuts {
		return errors.New("disk full")
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	f.blobs[key] = cp
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}
