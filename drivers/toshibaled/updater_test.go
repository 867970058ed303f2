package toshibaled

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"rgbled-go/i2cbus/i2cbustest"

	"github.com/google/go-cmp/cmp"
)

func TestUpdaterThrottle(t *testing.T) {
	r := newRig(t, Config{Mode: ModeDeferred})
	u := r.dev.Updater()

	var (
		mu     sync.Mutex
		stamps []uint64
	)
	r.tr.OnWrite = func(i2cbustest.Write) {
		mu.Lock()
		stamps = append(stamps, r.clock.NowMicros())
		mu.Unlock()
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		r.clock.Advance(time.Duration(rng.Intn(40_000)) * time.Microsecond)
		if rng.Intn(7) == 0 {
			_ = r.dev.SetColor(uint8(i), uint8(i>>1), uint8(i>>2))
		}
		r.mu.SetContended(rng.Intn(5) == 0)
		u.Update()
	}

	if len(stamps) < 100 {
		t.Fatalf("only %d writes; throttle too strict", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i] - stamps[i-1]; gap < 100_000 {
			t.Fatalf("writes %d and %d only %dus apart", i-1, i, gap)
		}
	}
	st := u.Stats()
	if st.Ticks != 5000 || st.Writes != uint32(len(stamps)) {
		t.Fatalf("stats %+v, writes seen %d", st, len(stamps))
	}
	if st.Throttled+st.Busy+st.Writes+st.Errors != st.Ticks {
		t.Fatalf("stats do not add up: %+v", st)
	}
}

func TestUpdaterSkipsBusyCycle(t *testing.T) {
	r := newRig(t, Config{Mode: ModeDeferred})
	u := r.dev.Updater()
	_ = r.dev.SetColor(255, 128, 16)

	r.clock.Set(100 * time.Millisecond)
	r.mu.SetContended(true)
	u.Update()
	if len(r.tr.Writes()) != 0 {
		t.Fatal("wrote while the bus was contended")
	}
	if u.Stats().Busy != 1 {
		t.Fatalf("stats %+v", u.Stats())
	}
	if r.dev.Applied() {
		t.Fatal("skipped cycle marked applied")
	}

	// Bus free again, but the skipped cycle still counts toward the throttle.
	r.mu.SetContended(false)
	r.clock.Set(150 * time.Millisecond)
	u.Update()
	if len(r.tr.Writes()) != 0 {
		t.Fatal("throttle ignored after skipped cycle")
	}

	r.clock.Set(200 * time.Millisecond)
	u.Update()
	if diff := cmp.Diff([]i2cbustest.Write{pwm(1, 8, 15)}, r.tr.Writes()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !r.dev.Applied() {
		t.Fatal("written colour not marked applied")
	}
	if u.State() != Idle {
		t.Fatalf("state after write = %v", u.State())
	}
	if r.mu.Held() {
		t.Fatal("bus leaked by updater")
	}
}

func TestUpdaterWritesLatestColour(t *testing.T) {
	r := newRig(t, Config{Mode: ModeDeferred})
	u := r.dev.Updater()

	_ = r.dev.SetColor(255, 0, 0)
	_ = r.dev.SetColor(0, 255, 0)
	_ = r.dev.SetColor(0, 0, 255)
	r.clock.Set(time.Second)
	u.Update()

	if diff := cmp.Diff([]i2cbustest.Write{pwm(15, 0, 0)}, r.tr.Writes()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestUpdaterWriteError(t *testing.T) {
	r := newRig(t, Config{Mode: ModeDeferred})
	u := r.dev.Updater()
	r.tr.FailAll = true

	_ = r.dev.SetColor(1, 2, 3)
	r.clock.Set(time.Second)
	u.Update()

	if st := u.Stats(); st.Errors != 1 || st.Writes != 0 {
		t.Fatalf("stats %+v", st)
	}
	if r.dev.Applied() {
		t.Fatal("failed write marked applied")
	}
	if takes, gives := r.mu.Counts(); takes != gives {
		t.Fatalf("takes=%d gives=%d", takes, gives)
	}
}

func TestUpdaterStateWhileWriting(t *testing.T) {
	r := newRig(t, Config{Mode: ModeDeferred})
	u := r.dev.Updater()

	var seen State
	r.tr.OnWrite = func(i2cbustest.Write) { seen = u.State() }
	r.clock.Set(time.Second)
	u.Update()
	if seen != Writing {
		t.Fatalf("state during write = %v", seen)
	}
}

func TestUpdaterIntervalFloor(t *testing.T) {
	r := newRig(t, Config{Mode: ModeDeferred, UpdateInterval: time.Millisecond})
	u := r.dev.Updater()

	var stamps []uint64
	r.tr.OnWrite = func(i2cbustest.Write) { stamps = append(stamps, r.clock.NowMicros()) }

	// One second of 2 ms ticks with a new colour every tick.
	for i := 0; i < 500; i++ {
		r.clock.Advance(2 * time.Millisecond)
		_ = r.dev.SetColor(uint8(i), 0, 0)
		u.Update()
	}

	if len(stamps) == 0 || len(stamps) > 10 {
		t.Fatalf("%d writes in one second", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i] - stamps[i-1]; gap < uint64(MinUpdateInterval/time.Microsecond) {
			t.Fatalf("writes %d and %d only %dus apart", i-1, i, gap)
		}
	}
}
