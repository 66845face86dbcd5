package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/bridge"
	"github.com/san-kum/seekbot/internal/ingest"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/storage"
	"github.com/san-kum/seekbot/internal/tui"
	"github.com/san-kum/seekbot/internal/viz"
	"github.com/san-kum/seekbot/internal/vocab"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks action.MultiSink
	if noSerial {
		sinks = append(sinks, dryRunSink(logger))
	} else {
		b, err := bridge.Open(cfg.Serial, logger)
		if err != nil {
			return err
		}
		defer b.Close()
		sinks = append(sinks, b)
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	recorder := storage.NewRecorder(st, "serve", cfg.TickHz, logger)

	opts := []action.Option{
		action.WithLogger(logger),
		action.WithObserver(recorder),
		action.WithObserver(tui.NewPrinter(os.Stdout, verbose)),
	}
	var srv *action.Server
	if cancelOnLost {
		opts = append(opts, action.WithObserver(lostCanceler(func() *action.Handle { return srv.Active() })))
	}

	// The listener also receives commands, so the server publishes through
	// a closure over the sink list completed below.
	srv, err = action.NewServer(vocab.NewValidator(vocab.COCO()),
		action.SinkFunc(func(c servo.Command) error { return sinks.Publish(c) }),
		cfg.Action(), opts...)
	if err != nil {
		return err
	}

	ln, err := ingest.Listen(cfg.Ingest, cfg.Topics, srv, logger)
	if err != nil {
		return err
	}
	defer ln.Close()
	sinks = append(sinks, ln)

	serveErr := make(chan error, 1)
	go func() { serveErr <- ln.Serve(ctx) }()

	fmt.Printf("listening for %s and %s on %s\n", cfg.Topics.Detections, cfg.Topics.Depth, ln.Addr())
	fmt.Println(viz.KeyHint.Render("type a class name to start a goal, cancel to stop it, quit to exit"))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	defer func() {
		if h := srv.Active(); h != nil {
			h.Cancel()
		}
		srv.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if done := handleCommand(ctx, srv, strings.TrimSpace(line)); done {
				return nil
			}
		}
	}
}

// handleCommand runs one stdin line and reports whether serve should exit.
func handleCommand(ctx context.Context, srv *action.Server, line string) bool {
	switch strings.ToLower(line) {
	case "":
		return false
	case "quit", "exit":
		return true
	case "cancel":
		h := srv.Active()
		if h == nil {
			fmt.Println(viz.Subtle.Render("no active goal"))
			return false
		}
		if err := h.Cancel(); err != nil && !errors.Is(err, action.ErrGoalFinished) {
			fmt.Println(viz.Warning.Render(err.Error()))
		}
		return false
	}

	h, err := srv.Submit(ctx, line)
	if err != nil {
		fmt.Println(viz.Warning.Render(fmt.Sprintf("goal %q rejected: %v", line, err)))
		return false
	}
	fmt.Printf("goal %s accepted: %s\n", h.ID, h.Goal)
	return false
}

func dryRunSink(logger *log.Logger) action.VelocitySink {
	return action.SinkFunc(func(c servo.Command) error {
		logger.Printf("cmd_vel %s", c)
		return nil
	})
}

// lostCanceler cancels the active goal on the first "Lost object" tick.
type lostCanceler func() *action.Handle

func (l lostCanceler) OnTick(t action.TickReport) {
	if t.Loss != servo.LossLost {
		return
	}
	if h := l(); h != nil && h.ID == t.GoalID {
		h.Cancel()
	}
}

func (l lostCanceler) OnResult(action.ResultReport) {}
