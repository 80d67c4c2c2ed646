package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"stagekeeper/internal/logger"
	"stagekeeper/internal/models"
)

/**
 * Stager 按声明顺序应用同步规则，幂等地暂存文件
 * @description
 * - 单向、非破坏性拷贝：目标已存在的文件永不覆盖
 * - 源目录缺失只记警告，provisioner可能尚未投放
 * - 拷贝中途失败立即中止并清理残留文件
 */
type Stager struct {
	rules []models.SyncRule
}

func NewStager(rules []models.SyncRule) *Stager {
	return &Stager{rules: rules}
}

/**
 * Stage 应用全部同步规则
 * @returns {models.StagingReport} 每条规则的拷贝/跳过统计和警告
 * @returns {error} 目录创建或拷贝失败时返回*models.StagingError
 * @description
 * - 重复执行与执行一次产生相同的目标树，容器每次启动都可安全调用
 * - 只处理源目录的直接常规文件，不递归
 * - 保留源文件的权限位
 */
func (s *Stager) Stage() (*models.StagingReport, error) {
	report := &models.StagingReport{
		StartTime: time.Now(),
	}

	for _, rule := range s.rules {
		rr, err := s.applyRule(rule, report)
		if err != nil {
			return nil, err
		}
		report.Rules = append(report.Rules, rr)
	}

	report.Duration = time.Since(report.StartTime).String()
	logger.Infof("Staging finished: %d file(s) copied, %d warning(s)",
		report.TotalFiles, len(report.Warnings))
	return report, nil
}

func (s *Stager) applyRule(rule models.SyncRule, report *models.StagingReport) (models.RuleReport, error) {
	rr := models.RuleReport{
		SourceDir: rule.SourceDir,
		DestDir:   rule.DestDir,
	}

	info, err := os.Stat(rule.SourceDir)
	if err != nil || !info.IsDir() {
		// 源目录缺失不是错误，provisioner可能还没投放内容
		rr.MissingSource = true
		warning := fmt.Sprintf("source directory %q does not exist, rule skipped", rule.SourceDir)
		report.Warnings = append(report.Warnings, warning)
		logger.Warnf("%s", warning)
		return rr, nil
	}

	if err := os.MkdirAll(rule.DestDir, 0755); err != nil {
		return rr, &models.StagingError{
			SourceDir: rule.SourceDir,
			DestDir:   rule.DestDir,
			Err:       err,
		}
	}

	entries, err := os.ReadDir(rule.SourceDir)
	if err != nil {
		return rr, &models.StagingError{
			SourceDir: rule.SourceDir,
			DestDir:   rule.DestDir,
			Err:       err,
		}
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		destPath := filepath.Join(rule.DestDir, name)

		if _, err := os.Lstat(destPath); err == nil {
			// 已存在即跳过，这是幂等保证
			rr.Skipped = append(rr.Skipped, name)
			RecordStagedFile(false)
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			return rr, &models.StagingError{
				SourceDir: rule.SourceDir,
				DestDir:   rule.DestDir,
				File:      name,
				Err:       err,
			}
		}
		srcPath := filepath.Join(rule.SourceDir, name)
		if err := copyFile(srcPath, destPath, fi.Mode().Perm()); err != nil {
			return rr, &models.StagingError{
				SourceDir: rule.SourceDir,
				DestDir:   rule.DestDir,
				File:      name,
				Err:       err,
			}
		}
		rr.Copied = append(rr.Copied, name)
		report.TotalFiles++
		RecordStagedFile(true)
		logger.Debugf("Staged %s -> %s", srcPath, destPath)
	}
	return rr, nil
}

// copyFile 按字节拷贝并保留权限位，失败时清理残留的目标文件
func copyFile(srcPath, destPath string, perm os.FileMode) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(destPath)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(destPath)
		return err
	}
	// O_CREATE的权限位受umask影响，拷贝完成后显式恢复源文件的权限位
	if err := os.Chmod(destPath, perm); err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}
