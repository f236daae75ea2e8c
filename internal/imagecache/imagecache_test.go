package imagecache

import (
	"errors"
	"testing"
	"time"
)

func TestConvertAsyncAndGetWait(t *testing.T) {
	c := New(2)
	defer c.Shutdown()

	calls := 0
	converter := func(data []byte, w, h *int) ([]byte, error) {
		calls++
		time.Sleep(10 * time.Millisecond)
		return []byte("png-bytes"), nil
	}

	c.ConvertAsync("rel1", []byte("wmf-data"), nil, nil, converter)
	c.ConvertAsync("rel1", []byte("wmf-data"), nil, nil, converter) // duplicate, must not re-enqueue

	png, ok := c.Get("rel1", true)
	if !ok {
		t.Fatalf("expected Get to report a result")
	}
	if string(png) != "png-bytes" {
		t.Errorf("Get returned %q, want %q", png, "png-bytes")
	}
	if calls != 1 {
		t.Errorf("converter called %d times, want 1 (idempotent enqueue)", calls)
	}
}

func TestGetMemoizesFailure(t *testing.T) {
	c := New(1)
	defer c.Shutdown()

	converter := func(data []byte, w, h *int) ([]byte, error) {
		return nil, errors.New("bad image")
	}
	c.ConvertAsync("rel2", nil, nil, nil, converter)
	png, ok := c.Get("rel2", true)
	if !ok {
		t.Fatalf("expected Get to report a memoized result")
	}
	if png != nil {
		t.Errorf("expected nil png on failure, got %v", png)
	}

	// Second Get must not re-trigger the converter; cache already holds nil.
	png2, ok2 := c.Get("rel2", true)
	if !ok2 || png2 != nil {
		t.Errorf("expected memoized nil result on repeat Get")
	}
}

func TestGetWithoutWaitReturnsFalseWhilePending(t *testing.T) {
	c := New(1)
	defer c.Shutdown()

	release := make(chan struct{})
	converter := func(data []byte, w, h *int) ([]byte, error) {
		<-release
		return []byte("done"), nil
	}
	c.ConvertAsync("rel3", nil, nil, nil, converter)

	_, ok := c.Get("rel3", false)
	if ok {
		t.Errorf("expected Get(wait=false) to report no result while pending")
	}
	close(release)
	c.Get("rel3", true)
}
