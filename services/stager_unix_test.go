//go:build !windows

package services

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"stagekeeper/internal/models"
)

/**
 * TestStagerPreservesPermissions 测试保留权限位
 * @description
 * - 在限制性umask(0077)下暂存0755脚本和0644配置
 * - 目标文件的权限位必须与源完全一致，不受umask削减
 */
func TestStagerPreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, filepath.Join(src, "start.sh"), "#!/bin/sh\nexit 0\n", 0755)
	writeFile(t, filepath.Join(src, "app.conf"), "listen 8080\n", 0644)
	// 源文件写好后再收紧umask，只影响暂存这一侧
	os.Chmod(filepath.Join(src, "start.sh"), 0755)
	os.Chmod(filepath.Join(src, "app.conf"), 0644)
	oldMask := syscall.Umask(0o077)
	defer syscall.Umask(oldMask)

	if _, err := NewStager([]models.SyncRule{{SourceDir: src, DestDir: dst}}).Stage(); err != nil {
		t.Fatalf("暂存失败: %v", err)
	}

	cases := map[string]os.FileMode{
		"start.sh": 0755,
		"app.conf": 0644,
	}
	for name, want := range cases {
		info, err := os.Stat(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("目标文件%s不存在: %v", name, err)
		}
		if info.Mode().Perm() != want {
			t.Errorf("%s权限位未保留: 期望=%o, 实际=%o", name, want, info.Mode().Perm())
		}
	}
}
