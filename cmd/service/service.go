package service

import (
	"stagekeeper/cmd/root"

	"github.com/spf13/cobra"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Service operations (list/start/stop/restart etc.)",
	Long:  `Service operations (list/start/stop/restart etc.)`,
}

const serviceExample = `  # restart a supervised service
  stagekeeper service restart app-server`

func init() {
	root.RootCmd.AddCommand(serviceCmd)

	serviceCmd.Example = serviceExample
}
