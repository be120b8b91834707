package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	v1 "github.com/tupyy/dispatch-agent/api/v1"
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage worker instances",
}

var instanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered worker instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp []v1.InstanceResponse
		if err := apiCall("GET", "/api/instances", nil, &resp); err != nil {
			return err
		}
		for _, w := range resp {
			fmt.Printf("%s\t%s\t%s\tenabled=%v\n", w.ID, w.Name, w.Status, w.Enabled)
		}
		return nil
	},
}

var (
	addName    string
	addURL     string
	addBackend string
)

var instanceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a worker instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp v1.InstanceResponse
		if err := apiCall("POST", "/api/instances", v1.InstanceCreate{
			Name: addName, URL: addURL, Backend: addBackend,
		}, &resp); err != nil {
			return err
		}
		printOK("registered instance %s", resp.ID)
		return nil
	},
}

var instanceRemoveCmd = &cobra.Command{
	Use:   "remove [instance-id]",
	Short: "Deregister a worker instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiCall("DELETE", "/api/instances/"+args[0], nil, nil); err != nil {
			return err
		}
		printOK("removed %s", args[0])
		return nil
	},
}

var instanceEnableCmd = &cobra.Command{
	Use:   "enable [instance-id]",
	Short: "Re-enable a disabled worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiCall("POST", "/api/instances/"+args[0]+"/enable", nil, nil); err != nil {
			return err
		}
		printOK("enabled %s", args[0])
		return nil
	},
}

var instanceDisableCmd = &cobra.Command{
	Use:   "disable [instance-id]",
	Short: "Disable a worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiCall("POST", "/api/instances/"+args[0]+"/disable", nil, nil); err != nil {
			return err
		}
		printOK("disabled %s", args[0])
		return nil
	},
}

func init() {
	instanceAddCmd.Flags().StringVar(&addName, "name", "", "instance name")
	instanceAddCmd.Flags().StringVar(&addURL, "url", "", "instance base URL")
	instanceAddCmd.Flags().StringVar(&addBackend, "backend", "", "backend identifier")

	instanceCmd.AddCommand(instanceListCmd, instanceAddCmd, instanceRemoveCmd, instanceEnableCmd, instanceDisableCmd)
}
