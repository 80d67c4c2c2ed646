package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stagekeeper/internal/env"
	"stagekeeper/internal/logger"
	"stagekeeper/internal/models"
)

// SpecPath 部署说明文件的路径，STAGEKEEPER_SPEC可覆盖
func SpecPath() string {
	if fname := os.Getenv("STAGEKEEPER_SPEC"); fname != "" {
		return fname
	}
	return filepath.Join(env.StagekeeperDir, "share", "deploy-spec.json")
}

func loadLocalSpec() (*models.DeploymentSpecification, error) {
	fname := SpecPath()

	bytes, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("load %q failed: %v", fname, err)
	}
	var spec models.DeploymentSpecification
	if err := json.Unmarshal(bytes, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal %q failed: %v", fname, err)
	}
	if err := validateSpec(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// validateSpec 服务名必须唯一，命令不能为空
func validateSpec(spec *models.DeploymentSpecification) error {
	seen := make(map[string]bool)
	for _, svc := range spec.Services {
		if svc.Name == "" {
			return fmt.Errorf("service with empty name in deploy spec")
		}
		if seen[svc.Name] {
			return fmt.Errorf("duplicate service name %q in deploy spec", svc.Name)
		}
		seen[svc.Name] = true
		if svc.Command == "" {
			return fmt.Errorf("service %q has no command", svc.Name)
		}
	}
	for _, rule := range spec.SyncRules {
		if rule.SourceDir == "" || rule.DestDir == "" {
			return fmt.Errorf("sync rule with empty source or destination")
		}
	}
	return nil
}

var deployment *models.DeploymentSpecification

func LoadSpec() error {
	if deployment != nil {
		return nil
	}
	var err error
	deployment, err = loadLocalSpec()
	if err != nil {
		logger.Errorf("Load failed: %v", err)
		return err
	}
	return nil
}

func Spec() *models.DeploymentSpecification {
	if deployment == nil {
		logger.Fatal("Must run config.LoadSpec first")
		return nil
	}
	return deployment
}

// ResetSpec 仅供测试重新加载部署说明
func ResetSpec() {
	deployment = nil
}
