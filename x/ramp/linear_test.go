package ramp

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLinear(t *testing.T) {
	var got [][3]uint8
	var waited time.Duration
	tick := func(d time.Duration) bool { waited += d; return true }
	set := func(r, g, b uint8) { got = append(got, [3]uint8{r, g, b}) }

	Linear([3]uint8{0, 255, 10}, [3]uint8{100, 0, 10}, 400*time.Millisecond, 4, tick, set)

	want := [][3]uint8{
		{25, 192, 10},
		{50, 128, 10},
		{75, 64, 10},
		{100, 0, 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if waited != 400*time.Millisecond {
		t.Fatalf("waited %v", waited)
	}
}

func TestLinearSnap(t *testing.T) {
	var got [][3]uint8
	set := func(r, g, b uint8) { got = append(got, [3]uint8{r, g, b}) }
	Linear([3]uint8{}, [3]uint8{1, 2, 3}, 0, 10, func(time.Duration) bool { return true }, set)
	if !cmp.Equal(got, [][3]uint8{{1, 2, 3}}) {
		t.Fatalf("got %v", got)
	}
}

func TestLinearCancel(t *testing.T) {
	n := 0
	calls := 0
	tick := func(time.Duration) bool { n++; return n < 3 }
	Linear([3]uint8{}, [3]uint8{255, 255, 255}, time.Second, 10, tick, func(uint8, uint8, uint8) { calls++ })
	if calls != 2 {
		t.Fatalf("set called %d times after cancel", calls)
	}
}
