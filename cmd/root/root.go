package root

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "stagekeeper",
	Short: "容器启动引导器",
	Long:  `stagekeeper在容器启动时幂等地暂存已声明的文件，并启动、监控、按策略重启一组固定的子服务`,
}
