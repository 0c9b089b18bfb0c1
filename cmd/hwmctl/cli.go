package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/arthur-debert/hwmstore/formats"
	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
	"github.com/arthur-debert/hwmstore/types"
)

// storeConfigKey is read by store.Detect when --store is not given
const storeConfigKey = "hwm_store"

// CLI wires the hwmctl commands to a viper instance and output streams
type CLI struct {
	rootCmd *cobra.Command
	v       *viper.Viper
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
	logFile io.Closer
}

// NewCLI creates the command tree writing results to out and diagnostics to errOut
func NewCLI(out, errOut io.Writer) *CLI {
	cli := &CLI{
		v:      viper.New(),
		out:    out,
		errOut: errOut,
		logger: slog.Default(),
	}

	cli.setupViperConfig()
	cli.createRootCommand()
	cli.addCommands()
	return cli
}

// Execute runs the command line args
func (cli *CLI) Execute(args []string) error {
	cli.rootCmd.SetArgs(args)
	cli.rootCmd.SetOut(cli.out)
	cli.rootCmd.SetErr(cli.errOut)

	err := cli.rootCmd.Execute()
	if cli.logFile != nil {
		_ = cli.logFile.Close()
		cli.logFile = nil
	}
	return err
}

// setupViperConfig configures Viper with environment variables and config files
func (cli *CLI) setupViperConfig() {
	// HWMCTL_CONFIG points to a config file outside of the default locations
	if configFile := os.Getenv("HWMCTL_CONFIG"); configFile != "" {
		cli.v.SetConfigFile(configFile)
	} else {
		cli.v.SetConfigName(appName)
		cli.v.AddConfigPath(".")
		cli.v.AddConfigPath("$HOME/.hwmctl")
		cli.v.AddConfigPath("/etc/hwmctl")
	}

	cli.v.SetEnvPrefix("HWMCTL")
	cli.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cli.v.AutomaticEnv()

	// Read config file if it exists (ignore errors)
	_ = cli.v.ReadInConfig()
}

func (cli *CLI) createRootCommand() {
	cli.rootCmd = &cobra.Command{
		Use:   appName,
		Short: "Inspect and update high-water marks",
		Long: `hwmctl reads and writes the high-water marks (HWM) used by incremental
extraction jobs: the last value read from a table column, or the files already
downloaded from a remote folder.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (HWMCTL_*)
3. Configuration file (HWMCTL_CONFIG, ./hwmctl.yaml, ~/.hwmctl/, /etc/hwmctl/)

The store is either given with --store, or configured under hwm_store:

  hwm_store:
    yaml: /var/lib/etl/hwm.yaml

Examples:
  hwmctl --store hwm.yaml set-int --column id --source shop.orders --value 42
  hwmctl --store hwm.yaml add-files --folder /landing@ftp://files.example.com a.csv b.csv
  hwmctl --store hwm.yaml list --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.bindFlags(cmd)

			var stderr io.Writer
			if cli.v.GetBool("log-stderr") {
				stderr = cli.errOut
			}
			logger, logFile, err := initLogging(cli.v.GetString("log-level"), stderr)
			if err != nil {
				return NewConfigError("initialize logging", err.Error(), CommonSuggestions.CheckPerms)
			}
			cli.logger, cli.logFile = logger, logFile
			cli.logger.Info("command started", "command", cmd.CommandPath(), "args", args)
			return nil
		},
	}

	cli.addGlobalFlags()
}

// addGlobalFlags adds persistent flags that apply to all commands
func (cli *CLI) addGlobalFlags() {
	flags := cli.rootCmd.PersistentFlags()

	flags.StringP("store", "s", "", "Store type (memory|json|yaml), type:path, or a .json/.yaml file path")
	flags.StringP("format", "f", "table", "Output format ("+strings.Join(formats.List(), "|")+")")
	flags.String("log-level", "warn", "Log level (debug|info|warn|error)")
	flags.Bool("log-stderr", false, "Also write logs to stderr")

	flags.String("process-name", "", "Process owning the HWMs, defaults to the executable name")
	flags.String("process-host", "", "Host of the process, defaults to the current host")
	flags.String("process-task", "", "Scheduler task of the process")
	flags.String("process-dag", "", "Scheduler DAG of the process")
}

// bindFlags makes every flag of cmd readable through viper, so values may also
// come from HWMCTL_* variables or the config file
func (cli *CLI) bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		_ = cli.v.BindPFlag(flag.Name, flag)
	})
}

// process builds the process from the process flags
func (cli *CLI) process() (types.Process, error) {
	p, err := types.Process{
		Name: cli.v.GetString("process-name"),
		Host: cli.v.GetString("process-host"),
		Task: cli.v.GetString("process-task"),
		Dag:  cli.v.GetString("process-dag"),
	}.Validate()
	if err != nil {
		return types.Process{}, NewValidationError("resolve process", "process", cli.v.GetString("process-name"), err)
	}
	return p, nil
}

// withStore opens the configured store and runs fn with it as the current store
// and the flag process as the current process
func (cli *CLI) withStore(operation string, fn func(store.Store) error) error {
	process, err := cli.process()
	if err != nil {
		return err
	}
	defer hwm.DefaultProcessStack.Enter(process)()

	run := func(s store.Store) error {
		cli.logger.Debug("using store", "operation", operation, "store", storeLabel(s), "process", process.QualifiedName())
		return WrapError(operation, fn(s))
	}

	if spec := cli.v.GetString("store"); spec != "" {
		name, args := parseStoreSpec(spec)
		s, err := store.New(name, args)
		if err != nil {
			return NewStoreError(operation, err)
		}
		defer func() { _ = s.Close() }()
		defer store.DefaultStack.Enter(s)()
		return run(s)
	}

	if !cli.v.IsSet(storeConfigKey) {
		return NewConfigError(operation, "no hwm store configured", CommonSuggestions.CheckConfig, CommonSuggestions.CheckStore)
	}
	err = store.WithDetected(cli.v, storeConfigKey, run)
	var cliErr *CLIError
	if err != nil && !errors.As(err, &cliErr) {
		return NewStoreError(operation, err)
	}
	return err
}

// parseStoreSpec reads "memory", "yaml:/path/hwm.yaml" or a bare file path
func parseStoreSpec(spec string) (string, store.Args) {
	known := map[string]bool{}
	for _, name := range store.KnownTypes() {
		known[name] = true
	}

	if known[spec] {
		return spec, store.Args{}
	}
	if name, arg, found := strings.Cut(spec, ":"); found && known[name] {
		return name, store.Args{Positional: []any{arg}}
	}
	switch strings.ToLower(filepath.Ext(spec)) {
	case ".json", ".yaml", ".yml":
		return "file", store.Args{Positional: []any{spec}}
	}
	return spec, store.Args{}
}

func storeLabel(s store.Store) string {
	if fs, ok := s.(*store.FileStore); ok {
		return fs.Format() + ":" + fs.Path()
	}
	return "memory"
}

// render writes items in the --format output format
func (cli *CLI) render(items []hwm.HWM) error {
	name := cli.v.GetString("format")
	if err := formats.Render(cli.out, name, items); err != nil {
		return NewValidationError("render output", "format", name, err, "Available formats: "+strings.Join(formats.List(), ", "))
	}
	return nil
}

func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.typesCommand(),
		cli.listCommand(),
		cli.getCommand(),
		newSetCommand(cli, "set-int", hwm.KindColumnInt, hwm.NewIntHWM),
		newSetCommand(cli, "set-date", hwm.KindColumnDate, hwm.NewDateHWM),
		newSetCommand(cli, "set-datetime", hwm.KindColumnDateTime, hwm.NewDateTimeHWM),
		cli.addFilesCommand(),
		cli.pendingFilesCommand(),
		cli.setOffsetsCommand(),
		cli.sqlCommand(),
		cli.importLegacyCommand(),
		cli.exportLegacyCommand(),
	)
}
