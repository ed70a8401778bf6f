// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/gramian/config"
	"github.com/katalvlaran/gramian/frame"
	"github.com/katalvlaran/gramian/logging"
	"github.com/katalvlaran/gramian/pipeline"
	"github.com/katalvlaran/gramian/regress"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	metricsAddr string
}

// dataFlags select the CSV input and model columns.
type dataFlags struct {
	data         string
	response     string
	numeric      []string
	categorical  []string
	weight       string
	standardize  bool
	useAllLevels bool
	noIntercept  bool
	lambda       float64
	workers      int
	topology     string
	chunkRows    int
	jsonOutput   bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "gramfit",
		Short:         "Fit linear models through a parallel Gram/Cholesky pipeline",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: text or json")
	root.PersistentFlags().StringVar(&g.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	root.AddCommand(newFitCmd(g), newGramCmd(g))

	return root
}

func addDataFlags(cmd *cobra.Command, d *dataFlags) {
	f := cmd.Flags()
	f.StringVar(&d.data, "data", "", "CSV file with a header row")
	f.StringVar(&d.response, "response", "", "response column")
	f.StringSliceVar(&d.numeric, "numeric", nil, "numeric feature columns")
	f.StringSliceVar(&d.categorical, "categorical", nil, "categorical feature columns")
	f.StringVar(&d.weight, "weight", "", "optional weight column")
	f.BoolVar(&d.standardize, "standardize", false, "standardize numeric columns")
	f.BoolVar(&d.useAllLevels, "use-all-levels", false, "keep every factor level (no reference level)")
	f.BoolVar(&d.noIntercept, "no-intercept", false, "fit without an intercept")
	f.Float64Var(&d.lambda, "lambda", 0, "initial ridge penalty")
	f.IntVar(&d.workers, "workers", 0, "concurrent chunks (0 = GOMAXPROCS)")
	f.StringVar(&d.topology, "topology", "", "reduction topology: tree or sequential")
	f.IntVar(&d.chunkRows, "chunk-rows", 0, "rows per chunk")
	f.BoolVar(&d.jsonOutput, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("response")
}

// session is the resolved state of one command invocation.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	runID  string
	stop   func()
}

// setup resolves configuration (defaults < file < env < flags), builds the
// logger and starts the metrics endpoint.
func setup(cmd *cobra.Command, g *globalFlags, d *dataFlags) (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	fl := cmd.Flags()
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	if g.metricsAddr != "" {
		cfg.Metrics.Addr = g.metricsAddr
	}
	if fl.Changed("standardize") {
		cfg.Model.Standardize = d.standardize
	}
	if fl.Changed("use-all-levels") {
		cfg.Model.UseAllLevels = d.useAllLevels
	}
	if fl.Changed("no-intercept") {
		cfg.Model.Intercept = !d.noIntercept
	}
	if fl.Changed("lambda") {
		cfg.Model.Lambda = d.lambda
	}
	if fl.Changed("workers") {
		cfg.Pipeline.Workers = d.workers
	}
	if fl.Changed("topology") {
		cfg.Pipeline.Topology = d.topology
	}
	if fl.Changed("chunk-rows") {
		cfg.Pipeline.ChunkRows = d.chunkRows
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, runID: uuid.NewString(), stop: func() {}}
	s.logger, err = logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: logging.Format(cfg.Logging.Format),
		Output: cmd.ErrOrStderr(),
		Attrs:  []slog.Attr{slog.String("run_id", s.runID)},
	})
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.Addr != "" {
		if s.stop, err = serveMetrics(cfg.Metrics.Addr, s.logger); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// serveMetrics exposes the default Prometheus registry until stop is called.
func serveMetrics(addr string, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_failed", slog.String("error", err.Error()))
		}
	}()
	logger.Info("metrics_listening", slog.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// load reads the CSV named by d according to the resolved configuration.
func (s *session) load(d *dataFlags) (*frame.Memory, error) {
	f, err := os.Open(d.data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mem, err := frame.ReadCSV(f, frame.CSVOptions{
		Numeric:      d.numeric,
		Categorical:  d.categorical,
		Response:     d.response,
		Weight:       d.weight,
		UseAllLevels: s.cfg.Model.UseAllLevels,
		ChunkRows:    s.cfg.Pipeline.ChunkRows,
	})
	if err != nil {
		return nil, err
	}
	if s.cfg.Model.Standardize {
		if err = mem.Standardize(); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("data_loaded",
		slog.String("path", d.data),
		slog.Int("records", mem.Len()),
		slog.Int("chunks", mem.NumChunks()),
	)

	return mem, nil
}

// params maps the resolved configuration onto fit parameters.
func (s *session) params() (regress.Params, error) {
	topo, err := pipeline.ParseTopology(s.cfg.Pipeline.Topology)
	if err != nil {
		return regress.Params{}, err
	}

	return regress.Params{
		Intercept:       s.cfg.Model.Intercept,
		Lambda:          s.cfg.Model.Lambda,
		MaxRidgeRetries: s.cfg.Model.MaxRidgeRetries,
		RidgeGrowth:     s.cfg.Model.RidgeGrowth,
		Workers:         s.cfg.Pipeline.Workers,
		FactorWorkers:   s.cfg.Pipeline.FactorWorkers,
		Topology:        topo,
		Logger:          s.logger,
	}, nil
}
