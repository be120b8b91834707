// Package cmd implements the dispatchd command-line surface: a single
// long-running server process, configured via flags, environment
// variables (DISPATCHD_ prefix) and an optional config file, following the
// spf13/cobra + spf13/viper wiring convention the teacher's go.mod carries
// but whose cmd/ tree the retrieval pack did not include.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var RootCmd = &cobra.Command{
	Use:           "dispatchd",
	Short:         "Request-dispatching front-end for document-parsing jobs",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")

	RootCmd.PersistentFlags().String("server-mode", "dev", "server mode: dev or prod")
	RootCmd.PersistentFlags().Int("http-port", 8080, "HTTP listen port")
	RootCmd.PersistentFlags().String("statics-folder", "", "path to static admin UI assets")
	RootCmd.PersistentFlags().String("tls-certificate", "", "path to a TLS certificate+key PEM file")

	RootCmd.PersistentFlags().Duration("task-timeout", 0, "max execution time per job (0 = default)")
	RootCmd.PersistentFlags().Duration("queue-timeout", 0, "max pending age before a queued job times out")
	RootCmd.PersistentFlags().Int("max-queue-size", 0, "admission ceiling (0 = default)")
	RootCmd.PersistentFlags().Bool("enable-priority", true, "honor submitted job priority")
	RootCmd.PersistentFlags().Int("max-retries", 0, "retry attempts before a job is marked failed")
	RootCmd.PersistentFlags().Duration("retry-delay", 0, "delay before a failed job is requeued")
	RootCmd.PersistentFlags().Duration("health-check-interval", 0, "worker probe cadence")
	RootCmd.PersistentFlags().Duration("instance-timeout", 0, "worker probe request timeout")

	RootCmd.PersistentFlags().String("data-folder", "./data", "directory holding the DuckDB database file")

	RootCmd.PersistentFlags().Bool("auth-enabled", true, "require a bearer token on admin routes")
	RootCmd.PersistentFlags().String("jwt-secret", "", "HS256 secret for admin bearer tokens")
	RootCmd.PersistentFlags().String("jwt-file-path", "", "path to a file holding the HS256 secret")

	RootCmd.PersistentFlags().String("log-format", "text", "log output format: text or json")
	RootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}

	RootCmd.PersistentPreRunE = cobrautil.SyncViperPreRunE("dispatchd")
	cobra.OnInitialize(initConfig)

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(versionCmd)
}

func initConfig() {
	viper.SetEnvPrefix("dispatchd")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "dispatchd: failed to read config file %s: %v\n", cfgFile, err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
