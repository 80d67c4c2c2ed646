//go:build unix || linux || darwin

package utils

import (
	"os"
	"syscall"
)

/**
 * Request graceful termination of a child process (SIGTERM)
 * @param {os.Process} process - Process handle owned by the supervisor
 * @returns {error} Returns error if the signal cannot be delivered
 * @description
 * - The supervisor escalates to Kill() itself after the grace period
 */
func Terminate(process *os.Process) error {
	return process.Signal(syscall.SIGTERM)
}

// IsProcessRunning 检查进程是否正在运行
func IsProcessRunning(pid int) (bool, error) {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false, err
	}
	// 信号0只做存在性检查，不影响目标进程
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return false, nil
	}
	return true, nil
}
