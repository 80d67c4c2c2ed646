package models

import "time"

type RunStatus string

const (
	// 表示正在运行
	StatusRunning RunStatus = "running"
	// 表示尚未启动
	StatusNotStarted RunStatus = "not-started"
	// 表示进程已退出，由重启策略决定是否再次拉起
	StatusExited RunStatus = "exited"
	// 表示启动失败(命令不存在/工作目录缺失)，按一次退出处理
	StatusError RunStatus = "error"
	// 表示被supervisor终止，不再重启
	StatusTerminated RunStatus = "terminated"
)

// LaunchErrorCode 启动失败时记录的约定退出码
const LaunchErrorCode = 127

type ProcessDetail struct {
	Title          string    `json:"title"`          //显示用的名字
	Command        string    `json:"command"`        //进程启动命令
	Args           []string  `json:"args"`           //进程参数
	WorkDir        string    `json:"workDir"`        //工作目录
	Pid            int       `json:"pid"`            //进程PID
	Status         RunStatus `json:"status"`         //状态
	ExitCode       int       `json:"exitCode"`       //最后一次退出码
	RestartCount   int       `json:"restartCount"`   //重启次数
	StartTime      time.Time `json:"startTime"`      //启动时间
	LastExitTime   time.Time `json:"lastExitTime"`   //最后一次退出的时间
	LastExitReason string    `json:"lastExitReason"` //最后一次退出的原因
}
