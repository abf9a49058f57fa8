package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/logging"
	"github.com/signalsfoundry/laserhazard/internal/observability"
)

const tracerName = "github.com/signalsfoundry/laserhazard/cmd/laserhazard"

// app carries what every subcommand needs once flags and config are read.
type app struct {
	v      *viper.Viper
	out    io.Writer
	log    logging.Logger
	engine *core.Engine

	// endTrace closes the command span when --trace is set.
	endTrace func(error)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, log: logging.Noop()}
	var cfgFile string

	root := &cobra.Command{
		Use:   "laserhazard",
		Short: "Laser exposure limits, hazard distances and product classes.",
		Long: `laserhazard evaluates maximum permissible exposures, accessible emission
limits, pulse-train corrections, nominal ocular hazard distances and laser
classes, and screens satellite passes against a laser's keep-out cone.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd, cfgFile, errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.laserhazard.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.StringP("output", "o", "text", "output format: text or json")
	pf.Bool("trace", false, "write an OpenTelemetry span for the command to stderr")

	root.AddCommand(
		a.mpeCmd(),
		a.c5Cmd(),
		a.criticalCmd(),
		a.nohdCmd(),
		a.classifyCmd(),
		a.eyewearCmd(),
		a.sweepCmd(),
		a.catalogCmd(),
		a.overflightCmd(),
	)
	a.wrapRunE(root)
	return root
}

// wrapRunE closes the command span after every RunE, including failed ones.
func (a *app) wrapRunE(c *cobra.Command) {
	for _, sub := range c.Commands() {
		if run := sub.RunE; run != nil {
			sub.RunE = func(cmd *cobra.Command, args []string) error {
				err := run(cmd, args)
				if a.endTrace != nil {
					a.endTrace(err)
				}
				return err
			}
		}
		a.wrapRunE(sub)
	}
}

// startTrace exports one span per invocation through the stdout exporter.
func (a *app) startTrace(cmd *cobra.Command, errOut io.Writer) error {
	shutdown, err := observability.InitTracing(cmd.Context(), observability.TracingConfig{
		Enabled:     true,
		ServiceName: "laserhazard",
		Exporter:    observability.ExporterStdout,
		SampleRatio: 1,
		Writer:      errOut,
	}, a.log)
	if err != nil {
		return err
	}
	ctx, span := otel.Tracer(tracerName).Start(cmd.Context(), cmd.CommandPath())
	cmd.SetContext(ctx)
	a.endTrace = func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
		observability.ShutdownWithTimeout(context.Background(), shutdown, a.log)
	}
	return nil
}

// initConfig reads the config file and LASERHAZARD_* environment, binds
// the running command's flags and builds the logger and engine.
func (a *app) initConfig(cmd *cobra.Command, cfgFile string, errOut io.Writer) error {
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		if home, err := homedir.Dir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigName(".laserhazard")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("LASERHAZARD")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	switch a.v.GetString("output") {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", a.v.GetString("output"))
	}

	if _, err := logging.ParseLevel(a.v.GetString("log-level")); err != nil {
		return err
	}
	a.log = logging.New(logging.Config{
		Level:  a.v.GetString("log-level"),
		Format: a.v.GetString("log-format"),
		Output: errOut,
	})

	cache, err := core.NewFactorCache(core.DefaultFactorCacheSize)
	if err != nil {
		return err
	}
	a.engine = core.NewEngine(core.WithFactorSource(cache))

	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug(cmd.Context(), "config loaded", logging.String("file", used))
	}
	if a.v.GetBool("trace") {
		return a.startTrace(cmd, errOut)
	}
	return nil
}

// render writes v as indented JSON or hands a tabwriter to text.
func (a *app) render(v any, text func(w io.Writer)) error {
	if a.v.GetString("output") == "json" {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	text(w)
	return w.Flush()
}

// required fetches a numeric setting that has no meaningful zero value.
func (a *app) required(name string) (float64, error) {
	v := a.v.GetFloat64(name)
	if v == 0 {
		return 0, fmt.Errorf("--%s is required", name)
	}
	return v, nil
}
