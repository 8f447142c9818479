package audio

import (
	"context"
	"runtime"
	"testing"
)

func TestRequestBufferFull(t *testing.T) {
	buf := newRequestBuffer(4)
	for i := 0; i < 4; i++ {
		if !buf.push(request{start: float64(i)}) {
			t.Fatalf("push %d should fit", i)
		}
	}
	if buf.push(request{start: 4}) {
		t.Error("push into a full buffer should fail")
	}

	var got []float64
	buf.drain(func(r request) { got = append(got, r.start) })
	if want := []float64{0, 1, 2, 3}; len(got) != 4 || got[3] != want[3] {
		t.Errorf("want %v, got %v", want, got)
	}
	if !buf.push(request{start: 5}) {
		t.Error("drained buffer should accept again")
	}
}

func TestRequestBufferConcurrent(t *testing.T) {
	buf := newRequestBuffer(8)

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	var got []float64
	go func() {
		collect := func(r request) { got = append(got, r.start) }
		for {
			select {
			case <-ctx.Done():
				buf.drain(collect)
				done <- struct{}{}
				return
			default:
				buf.drain(collect)
			}
		}
	}()

	const numRequests = 100_000
	for n := 0; n < numRequests; n++ {
		for !buf.push(request{start: float64(n)}) {
			runtime.Gosched()
		}
	}

	cancel()
	<-done

	if len(got) != numRequests {
		t.Fatalf("wrong number of requests: want %v, got %v", numRequests, len(got))
	}
	for i, v := range got {
		if want := float64(i); v != want {
			t.Fatalf("discontinuous request: want %v, got %v", want, v)
		}
	}
}
