package models

import (
	"fmt"
	"time"
)

/**
 * Result of applying a single sync rule
 * @property {string} source_dir - Rule source directory
 * @property {string} dest_dir - Rule destination directory
 * @property {[]string} copied - File names materialized by this run
 * @property {[]string} skipped - File names already present at the destination
 * @property {bool} missing_source - Source directory did not exist, rule skipped
 */
type RuleReport struct {
	SourceDir     string   `json:"source_dir"`
	DestDir       string   `json:"dest_dir"`
	Copied        []string `json:"copied,omitempty"`
	Skipped       []string `json:"skipped,omitempty"`
	MissingSource bool     `json:"missing_source,omitempty"`
}

type StagingReport struct {
	Rules      []RuleReport `json:"rules"`
	Warnings   []string     `json:"warnings,omitempty"`
	TotalFiles int          `json:"total_files"`
	StartTime  time.Time    `json:"start_time"`
	Duration   string       `json:"duration"`
}

// StagingError 暂存失败，标识出错的规则和文件
type StagingError struct {
	SourceDir string
	DestDir   string
	File      string
	Err       error
}

func (e *StagingError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("staging %s -> %s failed: %v", e.SourceDir, e.DestDir, e.Err)
	}
	return fmt.Sprintf("staging %s -> %s failed on %q: %v", e.SourceDir, e.DestDir, e.File, e.Err)
}

func (e *StagingError) Unwrap() error {
	return e.Err
}
