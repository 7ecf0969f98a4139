package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newRootCommand() (*cobra.Command, *commandContext) {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "linkloader",
		Short:         "Load MovieLens-style links into a database table",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cc.ensureConfig(); err != nil {
				return err
			}
			return cc.start()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cc.configFlag, "config", "c", "", "Configuration file path")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("metrics", false, "Serve Prometheus metrics while the command runs")

	flags.StringP("file", "f", "", "Links CSV: local path or http(s) URL, optionally .gz/.zst/.br/.zip/.rar")
	flags.String("entry", "", "File name to read inside zip/rar archives")
	flags.String("encoding", "", "Character encoding of the CSV (default UTF-8)")

	flags.String("driver", "", "Database driver (mysql, postgres, sqlite)")
	flags.String("dsn", "", "Driver-specific connection string, overrides the --db-* flags")
	flags.String("db-host", "", "Database host")
	flags.Int("db-port", 0, "Database port")
	flags.String("db-user", "", "Database user")
	flags.String("db-password", "", "Database password")
	flags.String("db-name", "", "Database name, or file path for sqlite")
	flags.String("table", "", "Destination table")

	bindFlags(flags, map[string]string{
		"log_level":         "log-level",
		"metrics.enabled":   "metrics",
		"source.path":       "file",
		"source.entry":      "entry",
		"source.encoding":   "encoding",
		"database.driver":   "driver",
		"database.dsn":      "dsn",
		"database.host":     "db-host",
		"database.port":     "db-port",
		"database.user":     "db-user",
		"database.password": "db-password",
		"database.name":     "db-name",
		"database.table":    "table",
	})

	rootCmd.AddCommand(newImportCommand(cc))
	rootCmd.AddCommand(newMigrateCommand(cc))
	rootCmd.AddCommand(newVerifyCommand(cc))
	rootCmd.AddCommand(newCountCommand(cc))

	return rootCmd, cc
}

// bindFlags binds config keys to flags so a flag set on the command line
// overrides the environment and the config file.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
