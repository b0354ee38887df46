// Command discograph-layout lays out one or more discograph payloads without
// a display and writes the settled positions as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/discograph-layout/pkg/broadcast"
	"github.com/dd0wney/discograph-layout/pkg/config"
	"github.com/dd0wney/discograph-layout/pkg/health"
	"github.com/dd0wney/discograph-layout/pkg/logging"
	"github.com/dd0wney/discograph-layout/pkg/metrics"
	"github.com/dd0wney/discograph-layout/pkg/pubsub"
	"github.com/dd0wney/discograph-layout/pkg/session"
)

// output is the document written after the last payload settles
type output struct {
	Session   string            `json:"session"`
	Center    string            `json:"center"`
	Page      int               `json:"page"`
	PageCount int               `json:"pageCount"`
	Alpha     float64           `json:"alpha"`
	Ticks     int               `json:"ticks"`
	Positions []pubsub.Position `json:"positions"`
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults when empty)")
	outPath := flag.String("out", "", "Write positions to this file instead of stdout")
	page := flag.Int("page", 0, "Select this page after the last payload (0 keeps the current page)")
	maxTicks := flag.Int("max-ticks", 10000, "Tick budget per settle")
	realtime := flag.Bool("realtime", false, "Pace ticks on the configured tick interval")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics and health endpoints on this address")
	broadcastAddr := flag.String("broadcast", "", "Publish position frames on this mangos address")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] payload.json [payload.json...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled, cfg.Metrics.Address = true, *metricsAddr
	}
	if *broadcastAddr != "" {
		cfg.Broadcast.Enabled, cfg.Broadcast.Address = true, *broadcastAddr
	}

	logger := cfg.Logger(os.Stderr)
	logging.SetDefaultLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, flag.Args(), *page, *maxTicks, *realtime, *outPath); err != nil {
		logging.ErrorLog("layout failed", logging.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger, payloads []string,
	page, maxTicks int, realtime bool, outPath string) error {

	reg := metrics.NewRegistry()
	hub := pubsub.NewHubWithBuffer(1024)
	defer hub.Shutdown()

	if cfg.Broadcast.Enabled {
		pub, err := broadcast.Listen(cfg.Broadcast.Address,
			broadcast.WithCompression(cfg.Broadcast.Compress),
			broadcast.WithEvery(cfg.Broadcast.Every),
			broadcast.WithMetrics(reg),
			broadcast.WithLogger(logger))
		if err != nil {
			return err
		}
		defer pub.Close()

		ticks, err := hub.Subscribe(ctx, pubsub.TopicTick)
		if err != nil {
			return err
		}
		go func() {
			if err := pub.Run(ctx, ticks); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("frame publisher stopped", logging.Error(err))
			}
		}()
	}

	sess, err := session.New(cfg,
		session.WithLogger(logger),
		session.WithMetrics(reg),
		session.WithHub(hub))
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		srv := serve(ctx, cfg.Metrics.Address, reg, health.ForSession(sess.ID, sess, cfg.Prune.MaxNodes, cfg.Prune.MaxLinks), logger)
		defer srv.Close()
	}

	ticks := 0
	settle := func() error {
		if realtime {
			return sess.Run(ctx)
		}
		n, err := sess.Settle(maxTicks)
		ticks = n
		return err
	}

	for _, path := range payloads {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
		if _, err := sess.ApplyJSON(sess.BeginRequest(), data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := settle(); err != nil {
			return err
		}
	}

	if page > 0 {
		sess.SelectPage(page)
		if err := settle(); err != nil {
			return err
		}
	}
	sess.Stop()

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	d := sess.Page()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		Session:   sess.ID,
		Center:    sess.Model().Center().Key,
		Page:      d.CurrentPage,
		PageCount: d.PageCount,
		Alpha:     sess.Alpha(),
		Ticks:     ticks,
		Positions: sess.Positions(),
	})
}

// serve exposes reg and the health endpoints on addr, and samples system
// metrics until ctx ends
func serve(ctx context.Context, addr string, reg *metrics.Registry, hc *health.HealthChecker,
	logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	hc.Mount(mux)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics listening", logging.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logging.Error(err))
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			reg.UpdateSystemMetrics()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return srv
}
