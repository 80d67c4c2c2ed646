package service

import (
	"fmt"

	"stagekeeper/internal/rpc"

	"github.com/spf13/cobra"
)

var restartCmd = &cobra.Command{
	Use:   "restart [服务名称]",
	Short: "重启服务",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := restartService(args[0]); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Restart service by name
 * @param {string} serviceName - Name of the service to restart
 * @returns {error} Returns error if service restart fails, nil on success
 * @description
 * - Asks the daemon to stop the service, wait for exit and relaunch it
 * @example
 * err := restartService("reverse-proxy")
 * if err != nil {
 *     logger.Fatal(err)
 * }
 */
func restartService(serviceName string) error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Post("/stagekeeper/api/v1/services/"+serviceName+"/restart", nil)
	if err != nil {
		return fmt.Errorf("重启服务失败: %v", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("重启服务失败: %s", resp.Error)
	}
	fmt.Printf("服务 %s 已重启\n", serviceName)
	return nil
}

func init() {
	serviceCmd.AddCommand(restartCmd)
}
