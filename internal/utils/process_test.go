//go:build !windows

package utils

import (
	"os"
	"os/exec"
	"testing"
)

/**
 * TestIsProcessRunningSelf 测试存活进程的检测
 */
func TestIsProcessRunningSelf(t *testing.T) {
	alive, err := IsProcessRunning(os.Getpid())
	if err != nil {
		t.Fatalf("检测进程失败: %v", err)
	}
	if !alive {
		t.Errorf("当前进程应被判定为存活")
	}
}

/**
 * TestIsProcessRunningExited 测试已回收进程的检测
 * @description
 * - 启动一个立即结束的子进程并回收
 * - 其PID不应再被判定为存活
 */
func TestIsProcessRunningExited(t *testing.T) {
	cmd := exec.Command("true")
	if err := cmd.Start(); err != nil {
		t.Fatalf("启动子进程失败: %v", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Wait(); err != nil {
		t.Fatalf("回收子进程失败: %v", err)
	}

	alive, err := IsProcessRunning(pid)
	if err != nil {
		t.Fatalf("检测进程失败: %v", err)
	}
	if alive {
		t.Errorf("已回收的进程不应被判定为存活")
	}
}
