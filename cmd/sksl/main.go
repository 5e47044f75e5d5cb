package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/sksl/config"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("sksl.cli")

// errDiagnostics is returned by commands that printed diagnostics. The
// diagnostics already explain the failure, so main only sets the exit code.
var errDiagnostics = errors.New("source has errors")

// state carries what the commands share: the file system, the consolidated
// configuration and the standard streams.
type state struct {
	fs        afero.Fs
	lookup    func(string) (string, bool)
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	stdoutTTY bool

	conf    config.Config
	verbose int
	logFile string
}

func newState() *state {
	return &state{
		fs:        afero.NewOsFs(),
		lookup:    os.LookupEnv,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdoutTTY: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

// useColor reports whether output should be coloured: the configured
// setting wins, otherwise colour is used on terminals.
func (st *state) useColor() bool {
	if st.conf.Color.Valid {
		return st.conf.Color.Bool
	}
	return st.stdoutTTY
}

func (st *state) colorize(c *color.Color) *color.Color {
	if st.useColor() {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func newRootCmd(st *state) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sksl",
		Short:         "Parse, check and format SkSL shaders",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				wd = "."
			}
			conf, err := config.Load(st.fs, wd, st.lookup, cmd.Flags())
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}
			st.conf = conf
			configureLogging(st)
			log.Debugf("max parse depth %d, extensions %v", conf.MaxParseDepth.Int64, conf.Extensions)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&st.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&st.logFile, "log", "", "write logs to `path` instead of stderr")
	config.BindFlags(flags)

	rootCmd.AddCommand(newParseCmd(st))
	rootCmd.AddCommand(newCheckCmd(st))
	rootCmd.AddCommand(newFmtCmd(st))
	rootCmd.AddCommand(newTokensCmd(st))
	rootCmd.AddCommand(newLSPCmd(st))

	return rootCmd
}

func configureLogging(st *state) {
	verbosity := st.verbose
	if st.conf.LogLevel.Valid && int(st.conf.LogLevel.Int64) > verbosity {
		verbosity = int(st.conf.LogLevel.Int64)
	}
	var path *string
	if st.logFile != "" {
		path = &st.logFile
	} else if st.conf.LogFile.Valid {
		path = &st.conf.LogFile.String
	}
	commonlog.Configure(verbosity, path)
}

func main() {
	st := newState()
	if err := newRootCmd(st).Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(st.stderr, "sksl:", err)
		}
		os.Exit(1)
	}
}
