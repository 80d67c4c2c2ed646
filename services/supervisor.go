package services

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stagekeeper/internal/logger"
	"stagekeeper/internal/models"
	"stagekeeper/internal/utils"
)

type SupervisorState string

const (
	StateStarting   SupervisorState = "starting"
	StateMonitoring SupervisorState = "monitoring"
	StateDraining   SupervisorState = "draining"
	StateStopped    SupervisorState = "stopped"
)

// exitEvent 子进程退出通知，所有子进程汇入同一通道
type exitEvent struct {
	svc  *ServiceInstance
	code int
}

/**
 * Service instance information
 * @property {string} name - Service name from the deployment spec
 * @property {string} startTime - Last launch time in RFC3339 format
 */
type ServiceInstance struct {
	Name      string
	StartTime string
	Spec      models.ServiceSpecification
	proc      *ProcessInstance
}

/**
 * Supervisor 管理一组固定的子进程
 * @description
 * - 按声明顺序启动，统一监控退出事件和停机信号
 * - 按重启策略拉起退出的服务
 * - fatal服务退出时整体进入draining
 * - 停机时按启动逆序逐个优雅终止，超过宽限期强杀
 */
type Supervisor struct {
	mu       sync.Mutex //保护state和report，API处理器并发读取
	state    SupervisorState
	services []*ServiceInstance
	byName   map[string]*ServiceInstance
	events   chan exitEvent
	grace    time.Duration
	report   *models.StagingReport
}

/**
 * NewSupervisor 创建supervisor
 * @param {[]models.ServiceSpecification} specs - 服务定义，启动顺序即声明顺序
 * @param {time.Duration} grace - 停机时每个子进程的宽限期
 * @returns {Supervisor} 返回创建的supervisor
 */
func NewSupervisor(specs []models.ServiceSpecification, grace time.Duration) *Supervisor {
	s := &Supervisor{
		state:  StateStarting,
		byName: make(map[string]*ServiceInstance),
		events: make(chan exitEvent, len(specs)*4+16),
		grace:  grace,
	}
	for _, spec := range specs {
		svc := &ServiceInstance{
			Name: spec.Name,
			Spec: spec,
			proc: NewProcessInstance(spec.Name, spec.Command, spec.Args, spec.WorkingDir),
		}
		svc.proc.SetExitHandler(func(pi *ProcessInstance, code int) {
			s.events <- exitEvent{svc: svc, code: code}
		})
		s.services = append(s.services, svc)
		s.byName[spec.Name] = svc
	}
	return s
}

func (s *Supervisor) State() SupervisorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(state SupervisorState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// SetStagingReport 挂上本次启动的暂存结果，供API查询
func (s *Supervisor) SetStagingReport(report *models.StagingReport) {
	s.mu.Lock()
	s.report = report
	s.mu.Unlock()
}

func (s *Supervisor) StagingReport() *models.StagingReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

func (s *Supervisor) GetInstances() []*ServiceInstance {
	return s.services
}

func (s *Supervisor) GetInstance(name string) *ServiceInstance {
	return s.byName[name]
}

func (s *Supervisor) GetServiceDetail(svc *ServiceInstance) models.ServiceDetail {
	detail := svc.proc.GetDetail()
	// Wait()尚未回收但进程已消失时，对外状态按exited报告
	if detail.Status == models.StatusRunning && detail.Pid > 0 {
		if alive, _ := utils.IsProcessRunning(detail.Pid); !alive {
			detail.Status = models.StatusExited
		}
	}
	return models.ServiceDetail{
		Name:      svc.Name,
		Pid:       detail.Pid,
		Status:    detail.Status,
		ExitCode:  detail.ExitCode,
		Restarts:  detail.RestartCount,
		StartTime: svc.StartTime,
		Spec:      svc.Spec,
		Process:   detail,
	}
}

// ActiveCount 正在运行的服务数
func (s *Supervisor) ActiveCount() int {
	count := 0
	for _, svc := range s.services {
		if svc.proc.IsRunning() {
			count++
		}
	}
	return count
}

/**
 * Run 启动全部服务并阻塞监控，直到收到停机信号或fatal服务退出
 * @param {context.Context} ctx - 取消该context等同于收到停机信号
 * @returns {int} 进程退出码: 0表示干净停机，非0表示fatal触发或强杀
 * @description
 * - 启动失败不影响后续服务启动，但fatal服务启动失败立即进入draining
 * - 监控循环在退出事件通道和信号通道上做一次阻塞多路等待，不轮询
 */
func (s *Supervisor) Run(ctx context.Context) int {
	s.setState(StateStarting)
	fatalDown := false

	for _, svc := range s.services {
		if err := s.launch(svc); err != nil {
			if svc.Spec.Fatal {
				logger.Errorf("Fatal service '%s' failed to launch, draining", svc.Name)
				fatalDown = true
				break
			}
			// 非fatal启动失败按一次退出交给重启策略
			s.events <- exitEvent{svc: svc, code: models.LaunchErrorCode}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	clean := !fatalDown
	if !fatalDown {
		s.setState(StateMonitoring)
		logger.Infof("Supervisor monitoring %d service(s)", len(s.services))
	monitoring:
		for {
			select {
			case ev := <-s.events:
				if s.handleExit(ev) {
					clean = false
					break monitoring
				}
			case sig := <-sigCh:
				logger.Infof("Received signal %v, shutting down", sig)
				break monitoring
			case <-ctx.Done():
				logger.Infof("Context cancelled, shutting down")
				break monitoring
			}
		}
	}

	forced := s.drain()
	s.setState(StateStopped)
	logger.Infof("Supervisor stopped (clean: %t, forced: %t)", clean, forced)
	if !clean || forced {
		return 1
	}
	return 0
}

func (s *Supervisor) launch(svc *ServiceInstance) error {
	svc.StartTime = time.Now().Format(time.RFC3339)
	return svc.proc.StartProcess()
}

/**
 * handleExit 处理一次子进程退出
 * @returns {bool} 返回true表示fatal服务退出，需要整体停机
 * @description
 * - 被supervisor终止的进程不再重启
 * - fatal服务的任何意外退出都触发draining
 * - 其余按策略处理: never不重启，on-failure仅非0退出码重启，always总是重启
 */
func (s *Supervisor) handleExit(ev exitEvent) bool {
	svc := ev.svc
	detail := svc.proc.GetDetail()
	if detail.Status == models.StatusTerminated {
		return false
	}
	RecordServiceExit(svc.Name, ev.code == 0)

	if svc.Spec.Fatal {
		logger.Errorf("Fatal service '%s' exited (code: %d), draining", svc.Name, ev.code)
		return true
	}

	switch svc.Spec.Policy() {
	case models.RestartAlways:
		s.restartService(svc, ev.code)
	case models.RestartOnFailure:
		if ev.code != 0 {
			s.restartService(svc, ev.code)
		} else {
			logger.Infof("Service '%s' exited cleanly, not restarting", svc.Name)
			svc.proc.MarkTerminated()
		}
	default:
		logger.Infof("Service '%s' exited (code: %d), restart policy is never", svc.Name, ev.code)
		svc.proc.MarkTerminated()
	}
	return false
}

// restartService 立即重新拉起，无退避。崩溃循环会以系统允许的
// 最快速度重启，这是当前声明语义的已知限制。
func (s *Supervisor) restartService(svc *ServiceInstance, code int) {
	logger.Infof("Restarting service '%s' (exit code: %d, restart #%d)",
		svc.Name, code, svc.proc.RestartCount+1)
	RecordServiceRestart(svc.Name)
	svc.StartTime = time.Now().Format(time.RFC3339)
	if err := svc.proc.Restart(); err != nil {
		// 重启失败作为又一次退出事件回流
		s.events <- exitEvent{svc: svc, code: models.LaunchErrorCode}
	}
}

/**
 * drain 按启动逆序终止所有仍在运行的服务
 * @returns {bool} 返回true表示有进程未在宽限期内退出被强杀
 * @description
 * - 先请求优雅退出，等待至多一个宽限期
 * - 超时强杀并回收
 */
func (s *Supervisor) drain() bool {
	s.setState(StateDraining)
	forced := false

	for i := len(s.services) - 1; i >= 0; i-- {
		svc := s.services[i]
		if !svc.proc.IsRunning() {
			continue
		}
		logger.Infof("Stopping service '%s'", svc.Name)
		if err := svc.proc.Terminate(); err != nil {
			svc.proc.Kill()
			forced = true
		}
		if !s.waitExit(svc, s.grace) {
			logger.Warnf("Service '%s' did not exit within %v, force killing", svc.Name, s.grace)
			svc.proc.Kill()
			forced = true
			s.waitExit(svc, s.grace)
		}
	}
	return forced
}

// waitExit 在事件通道上等待指定服务退出，其间到达的其他退出事件一并消费
func (s *Supervisor) waitExit(svc *ServiceInstance, timeout time.Duration) bool {
	if !svc.proc.IsRunning() {
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ev := <-s.events:
			if ev.svc == svc {
				return true
			}
		case <-timer.C:
			return false
		}
	}
}

/**
 * StartService 启动指定服务(API/CLI入口)
 * @param {string} name - 服务名
 * @returns {error} 返回错误信息
 */
func (s *Supervisor) StartService(name string) error {
	svc, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("service %s not found", name)
	}
	if svc.proc.IsRunning() {
		return fmt.Errorf("service %s is already running", name)
	}
	if err := s.launch(svc); err != nil {
		logger.Errorf("Start [%s] failed: %v", name, err)
		return err
	}
	return nil
}

/**
 * StopService 终止指定服务(API/CLI入口)
 * @param {string} name - 服务名
 * @returns {error} 返回错误信息
 * @description
 * - 被终止的服务状态为terminated，监控循环不会按策略重启
 */
func (s *Supervisor) StopService(name string) error {
	svc, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("service %s not found", name)
	}
	if !svc.proc.IsRunning() {
		return nil
	}
	return svc.proc.Terminate()
}

/**
 * RestartService 重启指定服务(API/CLI入口)
 * @param {string} name - 服务名
 * @returns {error} 返回错误信息
 */
func (s *Supervisor) RestartService(name string) error {
	svc, ok := s.byName[name]
	if !ok {
		logger.Errorf("Restart [%s] failed: service not found", name)
		return fmt.Errorf("service %s not found", name)
	}
	if svc.proc.IsRunning() {
		if err := svc.proc.Terminate(); err != nil {
			return err
		}
		// 等待退出，超过宽限期强杀后再等一个宽限期回收
		if !svc.proc.WaitExited(s.grace) {
			svc.proc.Kill()
			svc.proc.WaitExited(s.grace)
		}
	}
	return s.StartService(name)
}
