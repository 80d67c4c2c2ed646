package stage

import (
	"encoding/json"
	"fmt"
	"os"

	"stagekeeper/cmd/root"
	"stagekeeper/internal/config"
	"stagekeeper/services"

	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "只执行文件暂存，不启动服务",
	Long:  `按部署说明应用全部同步规则并输出暂存报告，可重复执行`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStage(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

/**
 * Apply all sync rules and print the staging report
 * @returns {error} Returns error if staging fails, nil on success
 * @description
 * - Loads the deployment spec and runs the stager once
 * - Prints the report as indented JSON to stdout
 */
func runStage() error {
	if err := config.LoadSpec(); err != nil {
		return fmt.Errorf("cannot load deployment spec: %v", err)
	}

	stager := services.NewStager(config.Spec().SyncRules)
	report, err := stager.Stage()
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonData))
	return nil
}

func init() {
	root.RootCmd.AddCommand(stageCmd)
}
