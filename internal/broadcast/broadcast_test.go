package broadcast

import "testing"

func TestBroadcaster_FanOut(t *testing.T) {
	b := New[int](4)
	id1, ch1 := b.Subscribe()
	id2, ch2 := b.Subscribe()
	defer b.Unsubscribe(id1)
	defer b.Unsubscribe(id2)

	b.Publish(1)
	b.Publish(2)

	if got := <-ch1; got != 1 {
		t.Fatalf("sub1: expected 1, got %d", got)
	}
	if got := <-ch1; got != 2 {
		t.Fatalf("sub1: expected 2, got %d", got)
	}
	if got := <-ch2; got != 1 {
		t.Fatalf("sub2: expected 1, got %d", got)
	}
}

func TestBroadcaster_DropsOldestOnOverflow(t *testing.T) {
	b := New[int](2)
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	b.Publish(1)
	b.Publish(2)
	b.Publish(3) // ch is full (1,2); oldest (1) is dropped to make room for 3

	if got := <-ch; got != 2 {
		t.Fatalf("expected oldest-dropped fan-out to leave 2 first, got %d", got)
	}
	if got := <-ch; got != 3 {
		t.Fatalf("expected 3 next, got %d", got)
	}
	if lagged := b.Lagged(id); lagged != 1 {
		t.Fatalf("expected lagged count 1, got %d", lagged)
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := New[int](1)
	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after Unsubscribe")
	}
}

func TestBroadcaster_CloseClosesAllSubscribers(t *testing.T) {
	b := New[string](1)
	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	b.Close()

	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed after Close")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed after Close")
	}
}
