package service

import (
	"encoding/json"
	"fmt"

	"stagekeeper/internal/models"
	"stagekeeper/internal/rpc"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [服务名称]",
	Short: "查询服务的详细状态",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showStatus(args[0]); err != nil {
			fmt.Println(err)
		}
	},
}

func showStatus(serviceName string) error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Get("/stagekeeper/api/v1/services/"+serviceName, nil)
	if err != nil {
		return fmt.Errorf("查询服务失败: %v", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("查询服务失败: %s", resp.Error)
	}

	var detail models.ServiceDetail
	if err := json.Unmarshal(resp.Body, &detail); err != nil {
		return fmt.Errorf("解析服务信息失败: %v", err)
	}

	fmt.Printf("=== 服务 '%s' 的详细信息 ===\n", detail.Name)
	fmt.Printf("状态: %s\n", detail.Status)
	fmt.Printf("PID: %d\n", detail.Pid)
	fmt.Printf("启动命令: %s\n", detail.Spec.Command)
	fmt.Printf("工作目录: %s\n", detail.Spec.WorkingDir)
	fmt.Printf("重启策略: %s\n", detail.Spec.Policy())
	fmt.Printf("重启次数: %d\n", detail.Restarts)
	fmt.Printf("启动时间: %s\n", detail.StartTime)
	if detail.Status != models.StatusRunning {
		fmt.Printf("最后退出码: %d\n", detail.ExitCode)
		fmt.Printf("最后退出原因: %s\n", detail.Process.LastExitReason)
	}
	return nil
}

func init() {
	serviceCmd.AddCommand(statusCmd)
}
