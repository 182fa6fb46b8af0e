package clip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeBackend struct {
	written []byte
	changed chan struct{}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) WriteText(data []byte) <-chan struct{} {
	f.written = data
	return f.changed
}

func TestHoldTakenOver(t *testing.T) {
	b := &fakeBackend{changed: make(chan struct{}, 1)}
	b.changed <- struct{}{}

	r := Hold(context.Background(), b, []byte("hello"), time.Minute)

	assert.Equal(t, TakenOver, r)
	assert.Equal(t, []byte("hello"), b.written)
}

func TestHoldExpires(t *testing.T) {
	b := &fakeBackend{changed: make(chan struct{})}

	r := Hold(context.Background(), b, []byte("x"), 10*time.Millisecond)

	assert.Equal(t, Expired, r)
}

func TestHoldCancelled(t *testing.T) {
	b := &fakeBackend{changed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := Hold(ctx, b, []byte("x"), time.Minute)

	assert.Equal(t, Cancelled, r)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "taken over", TakenOver.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "unknown", Result(7).String())
}
