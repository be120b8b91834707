package cmd

import (
	"github.com/spf13/cobra"

	v1 "github.com/tupyy/dispatch-agent/api/v1"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and update the live dispatch configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the live configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp v1.ConfigResponse
		if err := apiCall("GET", "/api/config", nil, &resp); err != nil {
			return err
		}
		printField("task_timeout", resp.TaskTimeout)
		printField("queue_timeout", resp.QueueTimeout)
		printField("max_queue_size", resp.MaxQueueSize)
		printField("enable_priority", resp.EnablePriority)
		printField("max_retries", resp.MaxRetries)
		printField("retry_delay", resp.RetryDelay)
		printField("health_check_interval", resp.HealthCheckInterval)
		printField("instance_timeout", resp.InstanceTimeout)
		return nil
	},
}

var (
	setMaxRetries   int
	setMaxQueueSize int
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Patch the live configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		update := v1.ConfigUpdate{}
		if cmd.Flags().Changed("max-retries") {
			update.MaxRetries = &setMaxRetries
		}
		if cmd.Flags().Changed("max-queue-size") {
			update.MaxQueueSize = &setMaxQueueSize
		}

		var resp v1.ConfigResponse
		if err := apiCall("PATCH", "/api/config", update, &resp); err != nil {
			return err
		}
		printOK("configuration updated")
		return nil
	},
}

func init() {
	configSetCmd.Flags().IntVar(&setMaxRetries, "max-retries", 0, "retry attempts before a job is marked failed")
	configSetCmd.Flags().IntVar(&setMaxQueueSize, "max-queue-size", 0, "admission ceiling")

	configCmd.AddCommand(configGetCmd, configSetCmd)
}
