package main

import (
	"context"
	"time"

	"rgbled-go/config"
	"rgbled-go/drivers/toshibaled"
	"rgbled-go/i2cbus"
	"rgbled-go/platform"
	"rgbled-go/sched"
)

const boardName = "pico"

// Heartbeat colour, shown every other second.
var beat = [3]uint8{0, 64, 255}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	dev, err := setup(context.Background())
	if err != nil {
		println("led:", err.Error())
	}

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	on := false
	for t := range tick.C {
		on = !on
		status := "no led"
		if dev != nil {
			c := [3]uint8{}
			if on {
				c = beat
			}
			status = "ok"
			if err := dev.SetColor(c[0], c[1], c[2]); err != nil {
				status = err.Error()
			}
		}
		println(t.Format("15:04:05"), "Heartbeat", status)
	}
}

func setup(ctx context.Context) (*toshibaled.Device, error) {
	cfg, err := config.Defaults(boardName)
	if err != nil {
		return nil, err
	}
	res, err := platform.Open(cfg, nil)
	if err != nil {
		return nil, err
	}
	s := sched.New(sched.Config{Tick: cfg.Tick})
	dev, err := toshibaled.New(
		i2cbus.NewGuard(i2cbus.NewBus(res.I2C, nil), i2cbus.NewSemaphore()),
		toshibaled.Config{
			Mode:           cfg.Mode,
			OffValue:       cfg.OffValue,
			WriteTimeout:   cfg.WriteTimeout,
			UpdateInterval: cfg.UpdateInterval,
			ResetPin:       res.ResetPin,
			Scheduler:      s,
		})
	if err != nil {
		return nil, err
	}
	if err := dev.Initialize(); err != nil {
		return nil, err
	}
	go s.Run(ctx)
	return dev, nil
}
