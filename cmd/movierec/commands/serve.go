package commands

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/andrew/llm-movie-rec/pkg/service"
)

var (
	listenAddr     string
	metricsEnabled bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the explain and rank flows over HTTP",
	Long: `Start an HTTP server exposing:

  GET  /health
  GET  /api/model
  POST /api/explain   {"history": [...], "recommendation": {...}}
  POST /api/rank      {"profile": {...} | "history": [...], "candidates": [...]}
  GET  /metrics       (with --metrics)

Examples:
  movierec serve
  movierec serve --listen 127.0.0.1:9000 --metrics --log-pretty`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := signalContext()
		defer cancel()

		if cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		opts := []service.Option{service.WithLogger(log)}
		if met != nil {
			opts = append(opts, service.WithMetrics(met, registry))
		}
		return service.New(client, opts...).Run(ctx, cfg.ListenAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default :8080)")
	serveCmd.Flags().BoolVar(&metricsEnabled, "metrics", false, "expose Prometheus metrics on /metrics")
}
