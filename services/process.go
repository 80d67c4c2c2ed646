package services

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"stagekeeper/internal/logger"
	"stagekeeper/internal/models"
	"stagekeeper/internal/utils"
)

/**
 * ProcessInstance 进程实例信息
 * @property {string} title - 进程标题，用于显示和日志归属
 * @property {string} command - 执行命令
 * @property {[]string} args - 命令参数
 * @property {string} workDir - 工作目录
 * @property {string} status - 进程状态: running/exited/error/terminated
 * @property {int} exitCode - 最后一次退出码
 * @property {int} restartCount - 重启次数
 * @property {time.Time} startTime - 启动时间
 * @property {time.Time} lastExitTime - 最后退出时间
 * @property {string} lastExitReason - 最后退出原因
 */
type ProcessInstance struct {
	Title          string           //显示用的名字
	Command        string           //进程启动命令
	Args           []string         //进程参数
	WorkDir        string           //工作目录
	Status         models.RunStatus //状态
	ExitCode       int              //最后一次退出码
	RestartCount   int              //重启次数
	StartTime      time.Time        //启动时间
	LastExitTime   time.Time        //最后一次退出的时间
	LastExitReason string           //最后一次退出的原因
	onExited       func(pi *ProcessInstance, code int) //退出事件回调，supervisor经此多路复用
	exited         chan struct{}    //本次启动的退出通知，watchProcess回收后关闭
	cmd            *exec.Cmd        //当前进程，用于Wait()
	stopping       bool             //supervisor正在终止该进程
	outWG          sync.WaitGroup   //输出转发协程
	mutex          sync.Mutex       //保护实例数据一致性
}

/**
 * NewProcessInstance 创建新的进程实例
 * @param {string} title - 进程标题，可以唯一确定一个进程，即使它重启过
 * @param {string} command - 执行命令
 * @param {[]string} args - 命令参数
 * @param {string} workDir - 工作目录
 * @returns {ProcessInstance} 返回创建的进程实例
 */
func NewProcessInstance(title, command string, args []string, workDir string) *ProcessInstance {
	return &ProcessInstance{
		Title:        title,
		Command:      command,
		Args:         args,
		WorkDir:      workDir,
		RestartCount: 0,
		Status:       models.StatusNotStarted,
	}
}

// SetExitHandler 设置退出回调，必须在StartProcess之前调用
func (pi *ProcessInstance) SetExitHandler(onExited func(pi *ProcessInstance, code int)) {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	pi.onExited = onExited
}

func (pi *ProcessInstance) Pid() int {
	if pi.cmd == nil || pi.cmd.Process == nil {
		return 0
	}
	return pi.cmd.Process.Pid
}

func (pi *ProcessInstance) IsRunning() bool {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()
	return pi.Status == models.StatusRunning
}

func (pi *ProcessInstance) GetDetail() models.ProcessDetail {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	return models.ProcessDetail{
		Title:          pi.Title,
		Command:        pi.Command,
		Args:           pi.Args,
		WorkDir:        pi.WorkDir,
		Status:         pi.Status,
		Pid:            pi.Pid(),
		ExitCode:       pi.ExitCode,
		RestartCount:   pi.RestartCount,
		StartTime:      pi.StartTime,
		LastExitTime:   pi.LastExitTime,
		LastExitReason: pi.LastExitReason,
	}
}

/**
 * StartProcess 启动进程
 * @returns {error} 返回错误信息
 * @description
 * - 启动指定进程并捕获其标准输出/标准错误
 * - 子进程输出逐行归并到日志，带服务名前缀
 * - 使用协程等待进程退出，经onExited上报
 * - 启动失败时状态置为error，退出码记为LaunchErrorCode
 */
func (pi *ProcessInstance) StartProcess() error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()
	return pi.startProcess()
}

func (pi *ProcessInstance) startProcess() error {
	if pi.Status == models.StatusRunning {
		return nil
	}
	fullCommand := pi.Command
	for _, arg := range pi.Args {
		fullCommand += " " + arg
	}
	logger.Infof("Executing command: %s", fullCommand)

	cmd := exec.Command(pi.Command, pi.Args...)

	// 设置工作目录
	if pi.WorkDir != "" {
		cmd.Dir = pi.WorkDir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe for %q: %v", pi.Title, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe for %q: %v", pi.Title, err)
	}

	if err := cmd.Start(); err != nil {
		pi.Status = models.StatusError
		pi.ExitCode = models.LaunchErrorCode
		pi.LastExitTime = time.Now()
		pi.LastExitReason = fmt.Sprintf("start failed: %v", err)
		logger.Errorf("Failed to start process '%s', error: %v", pi.Title, err)
		return err
	}

	pi.cmd = cmd
	pi.stopping = false
	pi.exited = make(chan struct{})
	pi.Status = models.StatusRunning
	pi.StartTime = time.Now()

	logger.Infof("Process '%s' started (PID: %d)", pi.Title, pi.Pid())

	pi.outWG.Add(2)
	go pi.relayOutput(stdout)
	go pi.relayOutput(stderr)
	go pi.watchProcess(cmd)
	return nil
}

// relayOutput 将子进程输出逐行写入日志，以服务名标记来源
func (pi *ProcessInstance) relayOutput(r io.ReadCloser) {
	defer pi.outWG.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		logger.Infof("[%s] %s", pi.Title, scanner.Text())
	}
}

// Restart 重新拉起已退出的进程并累加重启计数
func (pi *ProcessInstance) Restart() error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	if pi.Status == models.StatusRunning {
		return nil
	}
	pi.RestartCount++
	return pi.startProcess()
}

// MarkTerminated 标记进程不再被拉起
func (pi *ProcessInstance) MarkTerminated() {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	if pi.Status != models.StatusRunning {
		pi.Status = models.StatusTerminated
	}
}

/**
 * Terminate 请求进程优雅退出
 * @returns {error} 返回错误信息
 * @description
 * - 发送终止信号，进程退出仍经watchProcess上报
 * - 状态置为terminated，supervisor不再按策略重启
 */
func (pi *ProcessInstance) Terminate() error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	if pi.Status != models.StatusRunning || pi.cmd == nil {
		return nil
	}
	pi.stopping = true

	if err := utils.Terminate(pi.cmd.Process); err != nil {
		logger.Errorf("Failed to terminate process '%s' (PID: %d): %v", pi.Title, pi.Pid(), err)
		return err
	}
	logger.Infof("Termination requested for process '%s' (PID: %d)", pi.Title, pi.Pid())
	return nil
}

/**
 * WaitExited 等待本次启动的进程被回收
 * @param {time.Duration} timeout - 最长等待时间
 * @returns {bool} 返回true表示进程已退出，false表示等待超时
 */
func (pi *ProcessInstance) WaitExited(timeout time.Duration) bool {
	pi.mutex.Lock()
	exited := pi.exited
	running := pi.Status == models.StatusRunning
	pi.mutex.Unlock()

	if exited == nil || !running {
		return true
	}
	select {
	case <-exited:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Kill 强制结束进程，仅在宽限期超时后使用
func (pi *ProcessInstance) Kill() error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	if pi.Status != models.StatusRunning || pi.cmd == nil {
		return nil
	}
	pi.stopping = true

	if err := pi.cmd.Process.Kill(); err != nil {
		logger.Errorf("Failed to kill process '%s' (PID: %d): %v", pi.Title, pi.Pid(), err)
		return err
	}
	logger.Warnf("Process '%s' (PID: %d) force killed", pi.Title, pi.Pid())
	return nil
}

/**
 * watchProcess 监控进程状态的协程
 * @description
 * - 等待输出转发协程结束后统一Wait()回收子进程
 * - 记录退出码和退出原因
 * - 经onExited回调上报，由supervisor决定重启
 */
func (pi *ProcessInstance) watchProcess(cmd *exec.Cmd) {
	pi.outWG.Wait()
	err := cmd.Wait()

	pi.mutex.Lock()

	code := 0
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	pi.ExitCode = code
	pi.LastExitTime = time.Now()

	if pi.stopping {
		pi.Status = models.StatusTerminated
		pi.LastExitReason = "terminated by supervisor"
		logger.Infof("Process '%s' stopped (exit code: %d)", pi.Title, code)
	} else if err != nil {
		pi.Status = models.StatusExited
		pi.LastExitReason = fmt.Sprintf("exited with error: %v", err)
		logger.Errorf("Process '%s' exited with code %d: %v", pi.Title, code, err)
	} else {
		pi.Status = models.StatusExited
		pi.LastExitReason = "exited normally"
		logger.Infof("Process '%s' exited normally", pi.Title)
	}
	pi.cmd = nil
	handler := pi.onExited
	exited := pi.exited
	pi.mutex.Unlock()

	close(exited)
	if handler != nil {
		handler(pi, code)
	}
}
