// hrdir is a command line client for the HR directory REST API.
//
// It reads users, statuses, departments and locations and prints them as
// indented JSON on stdout. Logs go to stderr (and optionally to a file).
//
// Usage:
//
//	hrdir --config config.yaml get users 42
//	hrdir --config config.yaml list statuses --id 42 --size 100
//	hrdir --config config.yaml cache clear users 42
//
// Configuration is provided via a YAML file specifying the API endpoint and
// token, the retry policy, the cache backend and the optional OpenTelemetry
// and metrics outputs. HRDIR_API_TOKEN overrides the token from the file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/fjacquet/hrdir/internal/cache"
	"github.com/fjacquet/hrdir/internal/client"
	"github.com/fjacquet/hrdir/internal/logging"
	"github.com/fjacquet/hrdir/internal/models"
	"github.com/fjacquet/hrdir/internal/telemetry"
	"github.com/fjacquet/hrdir/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	programName     = "hrdir"
	shutdownTimeout = 10 * time.Second
	telemetryInit   = 10 * time.Second
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configFile string
	debug      bool
)

// app carries everything a subcommand needs once the configuration is loaded.
type app struct {
	cfg              models.Config
	client           *client.Client
	cache            cache.Cache
	registry         *prometheus.Registry
	telemetryManager *telemetry.Manager
}

// setup loads the configuration, prepares logging and tracing, and builds the
// API client with its cache and metrics registry.
func setup(ctx context.Context) (*app, error) {
	cfg, err := utils.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if err := setupLogging(cfg, debug); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}

	var opts []client.Option
	if cfg.IsOTelEnabled() {
		a.telemetryManager = telemetry.NewManager(telemetry.Config{
			Enabled:        cfg.OpenTelemetry.Enabled,
			Endpoint:       cfg.OpenTelemetry.Endpoint,
			Insecure:       cfg.OpenTelemetry.Insecure,
			SamplingRate:   cfg.OpenTelemetry.SamplingRate,
			ServiceName:    programName,
			ServiceVersion: version,
			APIHost:        apiHost(cfg.API.BaseURL),
		})
		initCtx, cancel := context.WithTimeout(ctx, telemetryInit)
		if err := a.telemetryManager.Initialize(initCtx); err != nil {
			log.Warnf("Failed to initialize OpenTelemetry: %v. Continuing without tracing.", err)
		}
		cancel()
		if a.telemetryManager.IsEnabled() {
			opts = append(opts, client.WithTracerProvider(a.telemetryManager.TracerProvider()))
		}
	}

	a.cache, err = cache.New(ctx, cfg)
	if err != nil {
		// Caching is an optimisation; the commands still work without it.
		log.Warnf("Cache backend %s unavailable: %v. Continuing without cache.", cfg.Cache.Backend, err)
		a.cache = nil
	}
	if a.cache != nil {
		opts = append(opts, client.WithCache(a.cache))
	}
	opts = append(opts, client.WithMetrics(a.registry))

	a.client, err = client.New(cfg, opts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	log.WithFields(log.Fields{
		"base_url": cfg.API.BaseURL,
		"token":    cfg.MaskToken(),
		"cache":    cfg.Cache.Backend,
	}).Debug("Client configured")
	return a, nil
}

// close writes the metrics textfile and releases connections and exporters.
// Telemetry is flushed before the client so spans of the last call are sent.
func (a *app) close() {
	if a.cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.registry); err != nil {
			log.Warnf("Failed to write metrics textfile %s: %v", a.cfg.Metrics.Textfile, err)
		}
	}

	if a.telemetryManager != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.telemetryManager.Shutdown(ctx); err != nil {
			log.Warnf("Telemetry shutdown warning: %v", err)
		}
		cancel()
	}

	if a.client != nil {
		a.client.Close()
	}
	if closer, ok := a.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warnf("Cache close warning: %v", err)
		}
	}
}

// setupLogging initializes logging from the configuration. --debug wins over
// the configured level.
func setupLogging(cfg models.Config, debugMode bool) error {
	if err := logging.PrepareLogs(cfg.Logging.LogName); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if debugMode {
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug mode enabled")
		return nil
	}
	return logging.SetLevel(cfg.Logging.Level)
}

func apiHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// withApp runs fn against a freshly configured app and always closes it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be an integer", arg)
	}
	return id, nil
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Fetch one user, status, department or location by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := client.ParseResource(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			params, err := client.NewGetParams(id)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				body, err := a.client.Get(ctx, resource, params)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), body)
			})
		},
	}
}

func newListCmd() *cobra.Command {
	var id, size int
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List a collection, following pagination",
		Long: "List walks every page of a collection and prints the accumulated array.\n" +
			"--size stops after the page that reaches that many items; --id lists the\n" +
			"collection under one parent object, e.g. the statuses of a user.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := client.ParseResource(args[0])
			if err != nil {
				return err
			}
			params, err := client.NewListParams(id, size)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				items, err := a.client.List(ctx, resource, params)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), items)
			})
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "parent object id (0 lists the whole collection)")
	cmd.Flags().IntVar(&size, "size", 0, "stop once at least this many items are fetched (0 means all)")
	return cmd
}

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear <resource> <id>",
		Short: "Remove one cached object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := client.ParseResource(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				key := client.CacheKey(resource, id)
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"key":     key,
					"removed": a.client.InvalidateCache(ctx, key),
				})
			})
		},
	})
	return cacheCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, version)
		},
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Command line client for the HR directory API",
		Long:          "hrdir reads users, statuses, departments and locations from the HR directory REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return fmt.Errorf("required flag \"config\" not set")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (required)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug mode")

	rootCmd.AddCommand(newGetCmd(), newListCmd(), newCacheCmd(), newVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.HandleError(err)
	}
}
