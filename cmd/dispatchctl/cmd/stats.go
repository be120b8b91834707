package cmd

import (
	"github.com/spf13/cobra"

	v1 "github.com/tupyy/dispatch-agent/api/v1"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate dispatch statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp v1.StatsResponse
		if err := apiCall("GET", "/api/stats", nil, &resp); err != nil {
			return err
		}
		printField("queue.pending", resp.Queue.Pending)
		printField("queue.running", resp.Queue.Running)
		printField("tasks.total", resp.Tasks.Total)
		printField("tasks.completed", resp.Tasks.Completed)
		printField("tasks.failed", resp.Tasks.Failed)
		printField("instances.total", resp.Instances.Total)
		printField("instances.idle", resp.Instances.Idle)
		printField("instances.busy", resp.Instances.Busy)
		printField("instances.offline", resp.Instances.Offline)
		return nil
	},
}
