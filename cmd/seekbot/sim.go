package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/scene"
	"github.com/san-kum/seekbot/internal/storage"
	"github.com/san-kum/seekbot/internal/tui"
	"github.com/san-kum/seekbot/internal/viz"
	"github.com/san-kum/seekbot/internal/vocab"
	"github.com/spf13/cobra"
)

const defaultSimClass = "dog"

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	class := defaultSimClass
	if len(args) > 0 {
		class = args[0]
	}

	// Reject before building the scene; the server would reject it too.
	validator := vocab.NewValidator(vocab.COCO())
	goal, err := validator.Accept(class)
	if err != nil {
		return err
	}

	sc, err := scene.New(cfg.SimScene(), goal.ClassID)
	if err != nil {
		return err
	}
	period := cfg.Action().Period()
	driver := scene.NewDriver(sc, period, time.Now())

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	recorder := storage.NewRecorder(st, "sim", cfg.TickHz, logger)

	opts := []action.Option{
		action.WithLogger(logger),
		action.WithTicker(driver.Ticker),
		action.WithObserver(driver),
		action.WithObserver(recorder),
	}
	var feed *tui.Feed
	if live {
		feed = tui.NewFeed(cfg.Feedback.Buffer)
		opts = append(opts, action.WithObserver(feed))
		// Pace the scene at the configured rate so the monitor is watchable.
		driver.OnFrame(func(scene.Pose) { time.Sleep(period) })
	} else {
		opts = append(opts, action.WithObserver(tui.NewPrinter(os.Stdout, verbose)))
	}

	srv, err := action.NewServer(validator, sc, cfg.Action(), opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := srv.Submit(ctx, class)
	if err != nil {
		return err
	}

	if !live {
		fmt.Printf("seeking %s from (%.2f, %.2f), target at (%.2f, %.2f)\n",
			h.Goal, cfg.Scene.StartX, cfg.Scene.StartY, cfg.Scene.TargetX, cfg.Scene.TargetY)
		res, err := driver.Run(ctx, srv, h, maxTicks)
		if err != nil {
			return err
		}
		srv.Wait()
		return report(sc, recorder, res)
	}

	type outcome struct {
		res action.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := driver.Run(ctx, srv, h, maxTicks)
		done <- outcome{res, err}
	}()

	target := cfg.Scene
	pose := func() (x, y, heading, tx, ty float64) {
		p := sc.Pose()
		return p.X, p.Y, p.Heading, target.TargetX, target.TargetY
	}
	half := sc.Distance()/2 + 0.5
	monitor := tui.NewMonitor(feed, h).WithPose(pose, half)
	if _, err := tea.NewProgram(monitor, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && ctx.Err() == nil {
		h.Cancel()
		<-done
		return fmt.Errorf("monitor: %w", err)
	}

	h.Cancel()
	out := <-done
	if out.err != nil {
		return out.err
	}
	srv.Wait()
	return report(sc, recorder, out.res)
}

func report(sc *scene.Scene, recorder *storage.Recorder, res action.Result) error {
	p := sc.Pose()
	fmt.Println(viz.Result(res))
	fmt.Println(viz.Row("Pose", fmt.Sprintf("(%.2f, %.2f) heading %.2f rad", p.X, p.Y, p.Heading)))
	fmt.Println(viz.Row("Distance", fmt.Sprintf("%.3f m", sc.Distance())))

	ids, err := recorder.Saved()
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Printf("saved run: %s\n", id)
	}
	return nil
}
