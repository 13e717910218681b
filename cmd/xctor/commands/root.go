// Package commands implements the xctor CLI commands.
package commands

import (
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-mizu/xctor/internal/config"
)

// env is what every subcommand runs with, resolved once in PersistentPreRunE.
type env struct {
	cfg *config.Config
	log *logrus.Logger
}

type rootFlags struct {
	configFile string
	driver     string
	dsn        string
	verbose    bool
	noColor    bool
}

// NewRootCommand builds the xctor command tree.
func NewRootCommand() *cobra.Command {
	var (
		flags rootFlags
		e     env
	)

	root := &cobra.Command{
		Use:   "xctor",
		Short: "Inspect query results the way xctor maps them",
		Long: `xctor runs a query and shows how its rows look to the constructor
resolver: the Go type of every column, the primitive it unboxes to, and the
constructor signature that would accept the rows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if flags.noColor {
				color.NoColor = true
			}
			if color.NoColor {
				pterm.DisableColor()
			}

			e.log = logrus.New()
			e.log.SetOutput(cmd.ErrOrStderr())
			e.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
			if flags.verbose {
				e.log.SetLevel(logrus.DebugLevel)
			}

			v, err := config.New(flags.configFile)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			cfg, err := config.Load(v, flags.configFile != "")
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log.WithFields(logrus.Fields{
				"driver":   cfg.Driver,
				"timeout":  cfg.Timeout,
				"max_rows": cfg.MaxRows,
			}).Debug("configuration loaded")
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default: .xctor.yaml in ., $HOME, $HOME/.config/xctor)")
	pf.StringVar(&flags.driver, config.KeyDriver, "", "database/sql driver: sqlite3, postgres or mysql")
	pf.StringVar(&flags.dsn, config.KeyDSN, "", "data source name (falls back to DATABASE_URL)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log constructor resolution")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newDescribeCommand(&e))
	root.AddCommand(newVersionCommand())
	return root
}

// bindFlags lets explicitly set flags win over config file and environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, key := range []string{config.KeyDriver, config.KeyDSN} {
		f := cmd.Flags().Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "binding --%s", key)
		}
	}
	return nil
}
