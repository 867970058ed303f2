// Command ledctl sets the colour of a TCA62724 RGB LED.
//
//	ledctl [flags] COLOUR...
//
// Colours are names (red, off, ...), #rrggbb or r,g,b. Each is held for
// --dwell before the next one; the LED keeps the last colour on exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rgbled-go/config"
	"rgbled-go/drivers/toshibaled"
	"rgbled-go/errcode"
	"rgbled-go/i2cbus"
	"rgbled-go/platform"
	"rgbled-go/sched"
	"rgbled-go/x/mathx"
	"rgbled-go/x/ramp"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

var (
	configPath = "/etc/rgbled.yaml"
	board      = ""
	modeFlag   = ""
	dwell      = 500 * time.Millisecond
	hold       = time.Duration(0)
	fade       = time.Duration(0)
	loop       = false
	verbose    = false
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "YAML config file (missing file means board defaults)")
	pflag.StringVarP(&board, "board", "b", board, "board name, overrides the config file")
	pflag.StringVarP(&modeFlag, "mode", "m", modeFlag, "write mode: direct or deferred")
	pflag.DurationVarP(&dwell, "dwell", "d", dwell, "time each colour is shown")
	pflag.DurationVarP(&fade, "fade", "f", fade, "fade into each colour over this long")
	pflag.DurationVar(&hold, "hold", hold, "keep running after the last colour; negative waits for a signal")
	pflag.BoolVarP(&loop, "loop", "l", loop, "cycle through the colours until interrupted")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose logging")
}

func main() {
	log.SetFlags(0)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] COLOUR...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "boards: %v\n", config.Boards())
		pflag.PrintDefaults()
	}
	pflag.Parse()

	level := new(slog.LevelVar)
	logHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, level, pflag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, logger *slog.Logger, level *slog.LevelVar, args []string) error {
	colours, err := parseColours(args)
	if err != nil {
		return err
	}
	if len(colours) == 0 {
		pflag.Usage()
		return errors.New("no colour given")
	}

	cfg, err := config.Load(configPath, board)
	if err != nil {
		return fmt.Errorf("failed to load config %q: %w", configPath, err)
	}
	if modeFlag != "" {
		if cfg.Mode, err = toshibaled.ParseMode(modeFlag); err != nil {
			return err
		}
	}
	level.Set(cfg.LogLevel)
	if verbose {
		level.Set(slog.LevelDebug)
	}
	logger.Debug("config loaded", "board", cfg.Board, "bus", cfg.Bus, "mode", cfg.Mode)

	res, err := platform.Open(cfg, logger.With("component", "platform"))
	if err != nil {
		return fmt.Errorf("failed to open board %q: %w", cfg.Board, err)
	}
	defer res.Close()

	bus := i2cbus.NewBus(res.I2C, logger.With("component", "i2c"))
	guard := i2cbus.NewGuard(bus, i2cbus.NewSemaphore())
	scheduler := sched.New(sched.Config{
		Tick:   cfg.Tick,
		Logger: logger.With("component", "sched"),
	})

	dev, err := toshibaled.New(guard, toshibaled.Config{
		Mode:           cfg.Mode,
		OffValue:       cfg.OffValue,
		WriteTimeout:   cfg.WriteTimeout,
		UpdateInterval: cfg.UpdateInterval,
		ResetPin:       res.ResetPin,
		Scheduler:      scheduler,
		Logger:         logger.With("component", "led"),
	})
	if err != nil {
		return fmt.Errorf("failed to create the LED controller: %w", err)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		scheduler.Run(ctx)
		return nil
	})
	errg.Go(func() error {
		defer stop()
		if err := dev.Initialize(); err != nil {
			return fmt.Errorf("failed to initialise the LED: %w", err)
		}
		return play(ctx, logger, dev, colours, cfg.UpdateInterval)
	})
	err = errg.Wait()

	st := bus.Stats()
	attrs := []any{"tx", st.Tx, "errors", st.Errors, "suppressed", st.Suppressed}
	if u := dev.Updater(); u != nil {
		us := u.Stats()
		attrs = append(attrs, "updates", us.Writes, "busy", us.Busy, "update_errors", us.Errors)
	}
	logger.Info("done", attrs...)
	return err
}

func play(ctx context.Context, logger *slog.Logger, dev *toshibaled.Device, colours []color.RGBA, interval time.Duration) error {
	var failed error
	set := func(r, g, b uint8) {
		err := dev.SetColor(r, g, b)
		switch errcode.Of(err) {
		case errcode.OK:
			logger.Debug("colour set", "r", r, "g", g, "b", b)
		case errcode.Busy:
			logger.Warn("bus busy, colour dropped", "r", r, "g", g, "b", b)
		default:
			if failed == nil {
				failed = err
			}
		}
	}
	tick := func(d time.Duration) bool { return failed == nil && sleep(ctx, d) }
	// One step per updater cycle; faster steps would be throttled away.
	steps := uint16(mathx.Clamp(fade/interval, 1, 1000))

	var prev [3]uint8
	for {
		for _, c := range colours {
			next := [3]uint8{c.R, c.G, c.B}
			ramp.Linear(prev, next, fade, steps, tick, set)
			if failed != nil {
				return failed
			}
			if ctx.Err() != nil {
				return nil
			}
			logger.Info("colour", "r", c.R, "g", c.G, "b", c.B)
			prev = next
			if !sleep(ctx, dwell) {
				return nil
			}
		}
		if !loop {
			break
		}
	}

	// Give the updater a few cycles to push the last colour.
	deadline := time.Now().Add(3 * interval)
	for !dev.Applied() && time.Now().Before(deadline) {
		if !sleep(ctx, interval/10) {
			return nil
		}
	}
	if !dev.Applied() {
		logger.Warn("last colour not applied")
	}

	switch {
	case hold < 0:
		<-ctx.Done()
	case hold > 0:
		sleep(ctx, hold)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
