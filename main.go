package main

import (
	"os"

	_ "stagekeeper/cmd"
	"stagekeeper/cmd/root"
	"stagekeeper/internal/config"
	"stagekeeper/internal/env"
	"stagekeeper/internal/logger"
)

func main() {
	// 检查是否是daemon模式
	env.Daemon = len(os.Args) > 1 && os.Args[1] == "run"

	// daemon模式下日志同时输出到控制台，便于容器日志采集
	logger.InitLogger(config.Config.Log.Path, config.Config.Log.Level, env.Daemon)

	if err := root.RootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
	os.Exit(0)
}
