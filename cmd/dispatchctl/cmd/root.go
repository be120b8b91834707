// Package cmd implements dispatchctl, an operator CLI for a running
// dispatchd instance: submit/inspect/cancel/retry jobs, manage the worker
// registry, and read or patch the live configuration over its HTTP API.
package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serverURL string
	authToken string
	jsonOut   bool

	httpClient = &http.Client{Timeout: 30 * time.Second}
)

var RootCmd = &cobra.Command{
	Use:           "dispatchctl",
	Short:         "Operator CLI for the dispatch agent",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "dispatchd base URL")
	RootCmd.PersistentFlags().StringVar(&authToken, "token", "", "admin bearer token")
	RootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw JSON responses")

	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}
	viper.SetEnvPrefix("dispatchctl")
	viper.AutomaticEnv()

	RootCmd.AddCommand(taskCmd)
	RootCmd.AddCommand(instanceCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(statsCmd)
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
