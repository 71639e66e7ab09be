package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestMockNow(t *testing.T) {
	m := NewMock(epoch)
	if !m.Now().Equal(epoch) {
		t.Errorf("Now() = %v, want %v", m.Now(), epoch)
	}

	m.Advance(10 * time.Minute)
	if want := epoch.Add(10 * time.Minute); !m.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", m.Now(), want)
	}
}

func TestMockAfterFunc(t *testing.T) {
	m := NewMock(epoch)

	var fired []string
	m.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "b") })
	m.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })

	m.Advance(99 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("fired early: %v", fired)
	}

	m.Advance(time.Second)
	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Errorf("fired = %v, want [a b]", fired)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestMockTimerStop(t *testing.T) {
	m := NewMock(epoch)

	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Stop() on pending timer should return true")
	}
	if timer.Stop() {
		t.Error("second Stop() should return false")
	}

	m.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer should not fire")
	}
}

func TestMockCallbackSeesDueTime(t *testing.T) {
	m := NewMock(epoch)

	var at time.Time
	m.AfterFunc(time.Second, func() { at = m.Now() })
	m.Advance(time.Minute)

	if want := epoch.Add(time.Second); !at.Equal(want) {
		t.Errorf("callback Now() = %v, want %v", at, want)
	}
}

func TestMockCallbackCanReschedule(t *testing.T) {
	m := NewMock(epoch)

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			m.AfterFunc(time.Second, tick)
		}
	}
	m.AfterFunc(time.Second, tick)

	m.Advance(10 * time.Second)
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestRealAfterFunc(t *testing.T) {
	done := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
