package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/api"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/logging"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/metrics"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/shutdown"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/sysinfo"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/timers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve shared timers, host snapshots and metrics over HTTP",
	Long: `Starts an HTTP server holding one timer registry shared by all clients.

  POST   /timers/{name}        start (or restart) a timer; ?strict=true refuses existing names
  POST   /timers/{name}/end    end a timer
  GET    /timers/{name}        duration; ?quantity=N adds the rate
  DELETE /timers/{name}        remove a timer
  GET    /timers               list timers
  GET    /sysinfo              host snapshot
  GET    /metrics              Prometheus metrics
  GET    /health               liveness`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":9400", "listen address")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "grace period for in-flight requests")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("shutdown_timeout", serveCmd.Flags().Lookup("shutdown-timeout"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger().WithField("component", "serve")
	addr := viper.GetString("listen")

	// the seed timer measures server uptime
	reg := timers.NewLocked("uptime")
	provider := sysinfo.NewHostProvider()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		metrics.NewTimerCollector(reg),
		metrics.NewHostCollector(provider, viper.GetDuration("snapshot_timeout")),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := mux.NewRouter()
	router.Use(api.LoggingMiddleware(logger), api.NewRequestMetrics(promReg).Middleware)
	api.NewTimerHandler(reg, provider, logger).RegisterRoutes(router)
	router.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})).Methods("GET")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var serveErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("Listening", logging.Fields{"addr": addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", logging.Fields{"error": err.Error()})
			serveErr = err
			// a listener failure ends the wait just like a signal
			cancel()
		}
	}()

	sm := shutdown.New(viper.GetDuration("shutdown_timeout"), logger)
	sm.Register("http", shutdown.StopHTTPServer(server))

	err := sm.Wait(ctx)
	<-done

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
