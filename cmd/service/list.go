package service

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"stagekeeper/internal/models"
	"stagekeeper/internal/rpc"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "列出所有受管服务的信息",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := listServices(); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * List supervised service information
 * @returns {error} Returns error if listing fails, nil on success
 * @description
 * - Queries the running daemon over the local API
 * - Prints a table of name, pid, status, restarts and command
 * @throws
 * - Daemon not reachable errors
 */
func listServices() error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Get("/stagekeeper/api/v1/services", nil)
	if err != nil {
		return fmt.Errorf("获取服务信息失败: %v", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("获取服务信息失败: %s", resp.Error)
	}

	var details []models.ServiceDetail
	if err := json.Unmarshal(resp.Body, &details); err != nil {
		return fmt.Errorf("解析服务信息失败: %v", err)
	}

	if len(details) == 0 {
		fmt.Println("没有找到服务")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "名称\tPID\t状态\t重启次数\t启动命令")
	for _, d := range details {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
			d.Name, d.Pid, d.Status, d.Restarts, d.Spec.Command)
	}
	w.Flush()
	return nil
}

func init() {
	serviceCmd.AddCommand(listCmd)
}
