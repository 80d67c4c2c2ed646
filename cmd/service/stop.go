package service

import (
	"fmt"

	"stagekeeper/internal/rpc"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop [服务名称]",
	Short: "停止服务",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := stopService(args[0]); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Stop service by name
 * @param {string} serviceName - Name of the service to stop
 * @returns {error} Returns error if service stop fails, nil on success
 * @description
 * - A stopped service is not restarted by the supervisor until
 *   started again explicitly
 */
func stopService(serviceName string) error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Post("/stagekeeper/api/v1/services/"+serviceName+"/stop", nil)
	if err != nil {
		return fmt.Errorf("停止服务失败: %v", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("停止服务失败: %s", resp.Error)
	}
	fmt.Printf("服务 %s 已停止\n", serviceName)
	return nil
}

func init() {
	serviceCmd.AddCommand(stopCmd)
}
