package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/andrew/llm-movie-rec/pkg/config"
	"github.com/andrew/llm-movie-rec/pkg/llm"
	"github.com/andrew/llm-movie-rec/pkg/logger"
	"github.com/andrew/llm-movie-rec/pkg/metrics"
	"github.com/andrew/llm-movie-rec/pkg/models"
	"github.com/andrew/llm-movie-rec/pkg/movielens"
)

var (
	// Global flags
	cfgFile   string
	provider  string
	modelName string
	baseURL   string
	apiKey    string
	timeout   time.Duration
	logLevel  string
	logPretty bool
	dataDir   string

	// Resolved at startup
	cfg      config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	met      *metrics.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "movierec",
	Short: "Prompt an LLM to profile users, explain and rank movie recommendations",
	Long: `movierec drives a chat-completion model through three recommendation flows:

  converse  interview a user and extract a structured profile
  explain   have the model justify a movie it is told it recommended
  rank      have the model order a pool of held-out movies

Any OpenAI-compatible endpoint works (the default points at a local server);
--provider ollama talks to a native Ollama server instead.

Settings come from, lowest precedence first: built-in defaults, the --config
YAML file, a .env file, MOVIEREC_* environment variables, then flags.

Examples:
  movierec converse --multiline
  movierec explain --user 62
  movierec rank --user 62 --candidates 10 --seed 7
  movierec serve --listen :8080 --metrics`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the command named on the command line
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.StringVar(&provider, "provider", "", "completion backend: openai or ollama")
	flags.StringVarP(&modelName, "model", "m", "", "model name")
	flags.StringVar(&baseURL, "base-url", "", "backend base URL")
	flags.StringVar(&apiKey, "api-key", "", "API key for OpenAI-compatible backends")
	flags.DurationVar(&timeout, "timeout", 0, "per-request HTTP timeout")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&logPretty, "log-pretty", false, "human readable logs")
	flags.StringVar(&dataDir, "data", "", "MovieLens ml-latest-small directory")

	rootCmd.AddCommand(converseCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		met = metrics.New(registry)
	}
	return nil
}

func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = provider
	}
	if flags.Changed("model") {
		cfg.Model = modelName
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("api-key") {
		cfg.APIKey = apiKey
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-pretty") {
		cfg.LogPretty = logPretty
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	// serve only
	if flags.Changed("listen") {
		cfg.ListenAddr = listenAddr
	}
	if flags.Changed("metrics") {
		cfg.MetricsEnabled = metricsEnabled
	}
}

// newClient builds the configured completion client, instrumented when metrics are on
func newClient() (llm.Client, error) {
	client, err := llm.NewClient(cfg.ClientOptions())
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("provider", cfg.Provider).
		Str("model", client.Model()).
		Str("base_url", cfg.BaseURL).
		Msg("client ready")
	return llm.Instrument(client, met), nil
}

// loadHistory reads the dataset and returns userID's liked movies, oldest first
func loadHistory(userID int) ([]models.Movie, error) {
	start := time.Now()
	ds, err := movielens.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("loading MovieLens data from %s: %w", cfg.DataDir, err)
	}
	history, err := ds.UserHistory(userID, movielens.DefaultMinRating)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("movies", ds.Movies()).
		Int("ratings", ds.Ratings()).
		Int("liked", len(history)).
		Dur("duration", time.Since(start)).
		Msg("dataset loaded")
	return history, nil
}

// signalContext is cancelled on interrupt or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
