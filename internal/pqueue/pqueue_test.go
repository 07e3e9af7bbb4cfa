package pqueue

import "testing"

func TestPriorityDominance(t *testing.T) {
	q := New()
	var ran []string
	q.Push(Low, func() { ran = append(ran, "low") })
	q.Push(Critical, func() { ran = append(ran, "critical") })
	q.Push(Normal, func() { ran = append(ran, "normal") })
	q.Push(High, func() { ran = append(ran, "high") })

	want := []string{"critical", "high", "normal", "low"}
	for i, w := range want {
		task, ok := q.Pop()
		if !ok {
			t.Fatalf("expected pop %d to succeed", i)
		}
		task()
		if ran[i] != w {
			t.Fatalf("pop %d: expected %s before %s, got order %v", i, w, ran[i], ran)
		}
	}
}

func TestStealPriorityDominance(t *testing.T) {
	q := New()
	var ran string
	q.Push(Low, func() { ran = "low" })
	q.Push(High, func() { ran = "high" })

	task, ok := q.Steal()
	if !ok {
		t.Fatalf("expected steal to succeed")
	}
	task()
	if ran != "high" {
		t.Fatalf("expected the high priority task to be stolen first, got %s", ran)
	}
	if q.Size() != 1 {
		t.Fatalf("expected one task remaining after stealing the higher priority one, got %d", q.Size())
	}
}

func TestEmptyAggregatesAllPriorities(t *testing.T) {
	q := New()
	if !q.Empty() {
		t.Fatalf("expected fresh queue to be empty")
	}
	q.Push(Low, func() {})
	if q.Empty() {
		t.Fatalf("expected non-empty after push")
	}
}

func TestDeactivateStopsPushButAllowsDrain(t *testing.T) {
	q := New()
	q.Push(Normal, func() {})
	q.Deactivate()
	if q.Active() {
		t.Fatalf("expected Active() to report false after Deactivate")
	}
	q.Push(Normal, func() {})
	if q.Size() != 1 {
		t.Fatalf("expected push after deactivation to be a no-op, size=%d", q.Size())
	}
	if _, ok := q.Pop(); !ok {
		t.Fatalf("expected the pre-deactivation task to still be poppable")
	}
}

func TestPriorityClampOutOfRange(t *testing.T) {
	q := New()
	q.Push(Priority(-5), func() {})
	q.Push(Priority(99), func() {})
	if q.Size() != 2 {
		t.Fatalf("expected out-of-range priorities to clamp into range, size=%d", q.Size())
	}
}
