package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	v1 "github.com/tupyy/dispatch-agent/api/v1"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Submit and inspect jobs",
}

var (
	submitPayload  string
	submitPriority int
	submitAsync    bool
)

var taskSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a job",
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload map[string]any
		if submitPayload != "" {
			if err := json.Unmarshal([]byte(submitPayload), &payload); err != nil {
				return fmt.Errorf("parse --payload as JSON: %w", err)
			}
		}

		var resp v1.TaskResponse
		if err := apiCall("POST", "/api/tasks", v1.TaskCreate{
			Payload: payload, Priority: submitPriority, AsyncMode: submitAsync,
		}, &resp); err != nil {
			return err
		}

		printOK("submitted task %s", resp.TaskID)
		printField("status", resp.Status)
		if resp.Position != nil {
			printField("position", *resp.Position)
		}
		return nil
	},
}

var taskGetCmd = &cobra.Command{
	Use:   "get [task-id]",
	Short: "Get a job's status and result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp v1.TaskResponse
		if err := apiCall("GET", "/api/tasks/"+args[0], nil, &resp); err != nil {
			return err
		}
		printField("status", resp.Status)
		if resp.Position != nil {
			printField("position", *resp.Position)
		}
		if resp.Error != nil {
			printField("error", *resp.Error)
		}
		return nil
	},
}

var taskListStatus string

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, optionally filtered by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/tasks"
		if taskListStatus != "" {
			path += "?status=" + taskListStatus
		}

		var resp v1.TaskListResponse
		if err := apiCall("GET", path, nil, &resp); err != nil {
			return err
		}
		for _, t := range resp.Tasks {
			fmt.Printf("%s\t%s\tpriority=%d\n", t.TaskID, t.Status, t.Priority)
		}
		printField("total", resp.Total)
		return nil
	},
}

var taskCancelCmd = &cobra.Command{
	Use:   "cancel [task-id]",
	Short: "Cancel a pending or running job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiCall("DELETE", "/api/tasks/"+args[0], nil, nil); err != nil {
			return err
		}
		printOK("cancelled %s", args[0])
		return nil
	},
}

var taskRetryCmd = &cobra.Command{
	Use:   "retry [task-id]",
	Short: "Requeue a failed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiCall("POST", "/api/tasks/"+args[0]+"/retry", nil, nil); err != nil {
			return err
		}
		printOK("requeued %s", args[0])
		return nil
	},
}

var taskRetryAllCmd = &cobra.Command{
	Use:   "retry-all",
	Short: "Requeue every failed job",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp v1.MessageResponse
		if err := apiCall("POST", "/api/tasks/retry-all", nil, &resp); err != nil {
			return err
		}
		printOK("requeued %d failed tasks", resp.Count)
		return nil
	},
}

var taskFailedCmd = &cobra.Command{
	Use:   "failed",
	Short: "List failed jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp v1.FailedTaskListResponse
		if err := apiCall("GET", "/api/tasks/failed/list", nil, &resp); err != nil {
			return err
		}
		for _, t := range resp.Tasks {
			fmt.Printf("%s\tretries=%d\t%s\n", t.TaskID, t.RetryCount, t.Error)
		}
		printField("total", resp.Total)
		return nil
	},
}

func init() {
	taskSubmitCmd.Flags().StringVar(&submitPayload, "payload", "", "job payload as a JSON object")
	taskSubmitCmd.Flags().IntVar(&submitPriority, "priority", 5, "job priority (10 highest, 1 lowest)")
	taskSubmitCmd.Flags().BoolVar(&submitAsync, "async", true, "submit asynchronously instead of waiting for completion")

	taskListCmd.Flags().StringVar(&taskListStatus, "status", "", "filter by status")

	taskCmd.AddCommand(taskSubmitCmd, taskGetCmd, taskListCmd, taskCancelCmd, taskRetryCmd, taskRetryAllCmd, taskFailedCmd)
}
