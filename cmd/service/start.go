package service

import (
	"fmt"

	"stagekeeper/internal/rpc"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [服务名称]",
	Short: "启动服务",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := startService(args[0]); err != nil {
			fmt.Println(err)
		}
	},
}

func startService(serviceName string) error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Post("/stagekeeper/api/v1/services/"+serviceName+"/start", nil)
	if err != nil {
		return fmt.Errorf("启动服务失败: %v", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("启动服务失败: %s", resp.Error)
	}
	fmt.Printf("服务 %s 已启动\n", serviceName)
	return nil
}

func init() {
	serviceCmd.AddCommand(startCmd)
}
