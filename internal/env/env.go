package env

import (
	"os"
	"path/filepath"
)

var Daemon bool = false

// (default: %USERPROFILE%/.stagekeeper on Windows, $HOME/.stagekeeper on Linux)
var StagekeeperDir string = GetStagekeeperDir()

/**
 * Get stagekeeper directory path
 * @returns {string} Returns stagekeeper directory path
 * @description
 * - STAGEKEEPER_HOME overrides the default location inside containers
 */
func GetStagekeeperDir() string {
	if dir := os.Getenv("STAGEKEEPER_HOME"); dir != "" {
		return dir
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".stagekeeper")
}
