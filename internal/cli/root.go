package cli

import (
	"io"

	"github.com/nodedge/nodedge/internal/app"
	"github.com/nodedge/nodedge/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds the persistent flags.
type options struct {
	configPath   string
	logLevel     string
	logFormat    string
	workers      int
	httpPort     int
	notifyURL    string
	historyLimit int
}

func newRootCmd(outW, errW io.Writer) *cobra.Command {
	opts := &options{}
	def := config.Default()

	root := &cobra.Command{
		Use:   "nodedge",
		Short: "nodedge evaluates, simulates and compiles block diagram scenes",
		Long: brand.Sprint("nodedge") + " works on block diagram documents saved as JSON or YAML.\n" +
			subtle.Sprint("Evaluate outputs, run time simulations, generate Go code and convert documents."),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (.hcl or .toml).")
	pf.StringVar(&opts.logLevel, "log-level", def.LogLevel, "Logging level: debug, info, warn or error.")
	pf.StringVar(&opts.logFormat, "log-format", def.LogFormat, "Log output format: text or json.")
	pf.IntVar(&opts.workers, "workers", def.Workers, "Documents evaluated in parallel.")
	pf.IntVar(&opts.httpPort, "http-port", def.HTTPPort, "Port for /health and /metrics. 0 is disabled.")
	pf.StringVar(&opts.notifyURL, "notify-url", def.NotifyURL, "socket.io server receiving scene events.")
	pf.IntVar(&opts.historyLimit, "history-limit", def.HistoryLimit, "Undo stamps kept per scene.")

	root.AddCommand(
		evalCmd(opts),
		codegenCmd(opts),
		simulateCmd(opts),
		exportCmd(opts),
		watchCmd(opts),
		digestCmd(opts),
		blocksCmd(opts),
	)
	return root
}

// override applies the flags set on the command line on top of cfg.
func (o *options) override(flags *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("log-level", func() { cfg.LogLevel = o.logLevel })
	set("log-format", func() { cfg.LogFormat = o.logFormat })
	set("workers", func() { cfg.Workers = o.workers })
	set("http-port", func() { cfg.HTTPPort = o.httpPort })
	set("notify-url", func() { cfg.NotifyURL = o.notifyURL })
	set("history-limit", func() { cfg.HistoryLimit = o.historyLimit })
}

// runWithApp builds the App for a command, starts its HTTP server and
// closes it when fn returns. extra applies command specific flags.
func runWithApp(o *options, extra func(*pflag.FlagSet, *config.Config), fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		cfg, err := app.LoadConfig(ctx, o.configPath, func(c *config.Config) {
			o.override(cmd.Flags(), c)
			if extra != nil {
				extra(cmd.Flags(), c)
			}
		})
		if err != nil {
			return usageError(err)
		}
		a, err := app.NewApp(ctx, cmd.ErrOrStderr(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		if _, err := a.StartServer(); err != nil {
			return err
		}
		return fn(cmd, a, args)
	}
}
