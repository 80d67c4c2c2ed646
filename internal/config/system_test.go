package config

import (
	"os"
	"path/filepath"
	"testing"

	"stagekeeper/internal/logger"
	"stagekeeper/internal/models"
)

func init() {
	logger.InitLogger("console", "info", false)
}

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "deploy-spec.json")
	if err := os.WriteFile(fname, []byte(content), 0644); err != nil {
		t.Fatalf("写入部署说明失败: %v", err)
	}
	return fname
}

/**
 * TestLoadSpec 测试部署说明加载
 * @description
 * - STAGEKEEPER_SPEC指向临时文件
 * - 验证同步规则和服务定义被正确解析
 */
func TestLoadSpec(t *testing.T) {
	fname := writeSpec(t, `{
		"configuration": "v1",
		"version": "1.0.0",
		"sync_rules": [
			{"source_dir": "/opt/bundle/ui", "dest_dir": "/var/www/ui"}
		],
		"services": [
			{"name": "reverse-proxy", "command": "nginx", "args": ["-g", "daemon off;"], "fatal": true},
			{"name": "app-server", "command": "appd", "working_dir": "/srv/app", "restart": "on-failure"}
		]
	}`)
	t.Setenv("STAGEKEEPER_SPEC", fname)
	ResetSpec()
	defer ResetSpec()

	if err := LoadSpec(); err != nil {
		t.Fatalf("加载部署说明失败: %v", err)
	}
	spec := Spec()

	if len(spec.SyncRules) != 1 || spec.SyncRules[0].DestDir != "/var/www/ui" {
		t.Errorf("同步规则解析错误: %+v", spec.SyncRules)
	}
	if len(spec.Services) != 2 {
		t.Fatalf("服务数量错误: %d", len(spec.Services))
	}
	if !spec.Services[0].Fatal {
		t.Errorf("fatal标志解析错误")
	}
	if spec.Services[1].Policy() != models.RestartOnFailure {
		t.Errorf("重启策略解析错误: %s", spec.Services[1].Policy())
	}
	// 未声明策略时按never处理
	if spec.Services[0].Policy() != models.RestartNever {
		t.Errorf("缺省重启策略应为never: %s", spec.Services[0].Policy())
	}
}

/**
 * TestLoadSpecDuplicateName 测试服务名重复校验
 */
func TestLoadSpecDuplicateName(t *testing.T) {
	fname := writeSpec(t, `{
		"services": [
			{"name": "web", "command": "a"},
			{"name": "web", "command": "b"}
		]
	}`)
	t.Setenv("STAGEKEEPER_SPEC", fname)
	ResetSpec()
	defer ResetSpec()

	if err := LoadSpec(); err == nil {
		t.Errorf("服务名重复应报错")
	}
}

/**
 * TestLoadSpecEmptyCommand 测试命令缺失校验
 */
func TestLoadSpecEmptyCommand(t *testing.T) {
	fname := writeSpec(t, `{"services": [{"name": "web"}]}`)
	t.Setenv("STAGEKEEPER_SPEC", fname)
	ResetSpec()
	defer ResetSpec()

	if err := LoadSpec(); err == nil {
		t.Errorf("命令缺失应报错")
	}
}

/**
 * TestLoadSpecMissingFile 测试文件不存在时报错
 */
func TestLoadSpecMissingFile(t *testing.T) {
	t.Setenv("STAGEKEEPER_SPEC", filepath.Join(t.TempDir(), "absent.json"))
	ResetSpec()
	defer ResetSpec()

	if err := LoadSpec(); err == nil {
		t.Errorf("部署说明缺失应报错")
	}
}
