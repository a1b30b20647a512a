package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ChristopherRabotin/pcp"
	"github.com/ChristopherRabotin/pcp/metrics"
	"github.com/ChristopherRabotin/pcp/render"
	"github.com/ChristopherRabotin/pcp/session"
	"github.com/ChristopherRabotin/pcp/store"
	kitlog "github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagConfig      string
	flagWorkers     int
	flagTimeout     time.Duration
	flagPolicy      string
	flagOutput      string
	flagPlot        string
	flagMetricsAddr string
	flagVerbose     bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pcpplots",
		Short: "Generate interplanetary porkchop plots",
		Long: `pcpplots samples departure epochs and flight durations between two planets, solves
the Lambert problem for each sample and reports the transfer with the smallest total ΔV.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Directory of conf.toml (default $"+pcp.ConfigEnv+")")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "Goroutines evaluating grid cells (1 is sequential)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Maximum duration of each scan (0 for none)")
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "skip", "Behavior on infeasible cells: skip or abort")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "Bucket URL receiving the contour data (file:///dir, s3://bucket, gs://bucket)")
	rootCmd.PersistentFlags().StringVar(&flagPlot, "plot", "", "Contour plot file name (.png or .svg)")
	rootCmd.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every scan to stderr")

	rootCmd.AddCommand(interactiveCmd())
	rootCmd.AddCommand(scenarioCmd())
	return rootCmd
}

func interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Prompt for the bodies and windows, then zoom in as requested",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			env, err := newEnvironment(ctx, flagOutput)
			if err != nil {
				return err
			}
			defer env.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "\nInterplanetary porkchop plot")
			sess := &session.Session{
				Prompter:  session.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
				Scanner:   env.scanner,
				Ephemeris: env.conf.Ephemeris(),
				Reporter: session.ReporterFunc(func(ctx context.Context, pass int, res *pcp.ScanResult) error {
					return env.report(ctx, cmd, fmt.Sprintf("pass%d", pass), res)
				}),
				Logger: env.logger,
			}
			return sess.Run(ctx)
		},
	}
}

func scenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file>",
		Short: "Generate the porkchop plot of a scenario TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := pcp.LoadScenario(args[0])
			if err != nil {
				return err
			}
			// Flags explicitly set take precedence over the scenario.
			if !cmd.Flags().Changed("workers") && sc.Workers > 0 {
				flagWorkers = sc.Workers
			}
			if !cmd.Flags().Changed("policy") {
				flagPolicy = sc.Policy.String()
			}
			if !cmd.Flags().Changed("timeout") && sc.Timeout > 0 {
				flagTimeout = sc.Timeout
			}
			output := flagOutput
			if output == "" {
				output = sc.Output
			}
			flagVerbose = flagVerbose || sc.Verbose

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			env, err := newEnvironment(ctx, output)
			if err != nil {
				return err
			}
			defer env.Close()
			ephem := env.conf.Ephemeris()
			departure, err := pcp.NewBody(sc.Departure, ephem)
			if err != nil {
				return err
			}
			arrival, err := pcp.NewBody(sc.Arrival, ephem)
			if err != nil {
				return err
			}
			res, err := env.scan(ctx, departure, arrival, sc.Scan)
			if err != nil && !errors.Is(err, pcp.ErrNoFeasibleTransfer) {
				return err
			}
			return env.report(ctx, cmd, sc.FilePrefix, res)
		},
	}
}

// environment holds what every subcommand needs to scan and report.
type environment struct {
	runID   string
	conf    pcp.Config
	logger  kitlog.Logger
	scanner *pcp.Scanner
	bucket  *store.Bucket
	server  *http.Server
}

func newEnvironment(ctx context.Context, output string) (*environment, error) {
	env := &environment{runID: uuid.New().String()}
	var err error
	if env.conf, err = pcp.LoadConfig(flagConfig); err != nil {
		return nil, err
	}
	policy, err := pcp.ParseFailurePolicy(flagPolicy)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		env.logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
		env.logger = kitlog.With(env.logger, "run", env.runID, "ts", kitlog.DefaultTimestampUTC)
	} else {
		env.logger = kitlog.NewNopLogger()
	}
	env.scanner = pcp.NewScanner(env.conf.Solver(), pcp.WithWorkers(flagWorkers), pcp.WithFailurePolicy(policy), pcp.WithLogger(env.logger))
	if output != "" {
		if env.bucket, err = store.Open(ctx, output, env.runID); err != nil {
			return nil, err
		}
	}
	if flagMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		env.server = &http.Server{Addr: flagMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := env.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				env.logger.Log("level", "critical", "subsys", "metrics", "err", err)
			}
		}()
	}
	return env, nil
}

func (env *environment) scan(ctx context.Context, departure, arrival pcp.Body, cfg pcp.ScanConfig) (*pcp.ScanResult, error) {
	if flagTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}
	return env.scanner.Scan(ctx, departure, arrival, cfg)
}

// report prints the summary, then writes the contour data and the plot.
func (env *environment) report(ctx context.Context, cmd *cobra.Command, prefix string, res *pcp.ScanResult) error {
	if err := render.Summary(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if env.bucket != nil {
		for name, data := range res.DatFiles(prefix) {
			if err := env.bucket.Write(ctx, name, data); err != nil {
				return err
			}
		}
		csvName := fmt.Sprintf("pcp-%s.csv", prefix)
		if err := env.bucket.WriteFrom(ctx, csvName, res.WriteCSV); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Contour data written to %s\n", env.bucket.URI(csvName))
	}
	if flagPlot == "" || !res.Feasible() {
		return nil
	}
	opts := render.DefaultContourOptions()
	if strings.EqualFold(filepath.Ext(flagPlot), ".svg") {
		opts.Format = "svg"
	}
	var plotBuf bytes.Buffer
	if err := render.Contour(&plotBuf, res, opts); err != nil {
		env.logger.Log("level", "warning", "subsys", "render", "err", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "could not plot: %s\n", err)
		return nil
	}
	name := prefix + "-" + filepath.Base(flagPlot)
	if env.bucket != nil {
		if err := env.bucket.Write(ctx, name, plotBuf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Contour plot written to %s\n", env.bucket.URI(name))
		return nil
	}
	name = filepath.Join(filepath.Dir(flagPlot), name)
	if err := os.WriteFile(name, plotBuf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Contour plot written to %s\n", name)
	return nil
}

func (env *environment) Close() {
	if env.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		env.server.Shutdown(ctx)
	}
	if env.bucket != nil {
		env.bucket.Close()
	}
}
