package toshibaled_test

import (
	"context"
	"testing"
	"time"

	"rgbled-go/drivers/toshibaled"
	"rgbled-go/i2cbus"
	"rgbled-go/i2cbus/i2cbustest"
	"rgbled-go/sched"
	"rgbled-go/x/timex"

	"github.com/neilotoole/slogt"
)

// Deferred mode end to end: real scheduler, semaphore and clock.
func TestDeferredWithScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := &i2cbustest.Transport{}
	g := i2cbus.NewGuard(tr, i2cbus.NewSemaphore())
	s := sched.New(sched.Config{Tick: time.Millisecond})
	go s.Run(ctx)

	d, err := toshibaled.New(g, toshibaled.Config{
		Mode:           toshibaled.ModeDeferred,
		Scheduler:      s,
		Clock:          timex.NewMonotonic(),
		Logger:         slogt.New(t),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := d.SetColor(255, 128, 16); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !d.Applied() {
		if time.Now().After(deadline) {
			t.Fatalf("colour never applied; stats %+v", d.Updater().Stats())
		}
		time.Sleep(time.Millisecond)
	}
	ws := tr.Writes()
	last := ws[len(ws)-1]
	if last.Reg != 0x01 || string(last.Data) != string([]byte{1, 8, 15}) {
		t.Fatalf("last write %+v", last)
	}
}
