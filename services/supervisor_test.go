//go:build !windows

package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stagekeeper/internal/models"
)

func runSupervisor(s *Supervisor) (context.CancelFunc, chan int) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	return cancel, done
}

func waitForCode(t *testing.T, done chan int, timeout time.Duration) int {
	t.Helper()
	select {
	case code := <-done:
		return code
	case <-time.After(timeout):
		t.Fatalf("supervisor未在%v内停止", timeout)
		return 0
	}
}

/**
 * TestFatalChildDrainsSupervisor 测试fatal服务退出导致整体停机
 * @description
 * - fatal服务以退出码1结束
 * - supervisor进入draining并以非0退出码停止
 */
func TestFatalChildDrainsSupervisor(t *testing.T) {
	specs := []models.ServiceSpecification{
		{Name: "doomed", Command: "sh", Args: []string{"-c", "exit 1"}, Fatal: true},
	}
	s := NewSupervisor(specs, 2*time.Second)

	cancel, done := runSupervisor(s)
	defer cancel()

	if code := waitForCode(t, done, 10*time.Second); code == 0 {
		t.Errorf("fatal服务退出后整体退出码应为非0")
	}
	if s.State() != StateStopped {
		t.Errorf("supervisor状态错误: 期望=stopped, 实际=%s", s.State())
	}
}

/**
 * TestFatalLaunchFailureDrains 测试fatal服务启动失败立即停机
 */
func TestFatalLaunchFailureDrains(t *testing.T) {
	specs := []models.ServiceSpecification{
		{Name: "missing", Command: "/no/such/binary", Fatal: true},
	}
	s := NewSupervisor(specs, time.Second)

	cancel, done := runSupervisor(s)
	defer cancel()

	if code := waitForCode(t, done, 10*time.Second); code == 0 {
		t.Errorf("fatal服务启动失败后整体退出码应为非0")
	}
}

/**
 * TestRestartOnFailurePolicy 测试on-failure重启策略
 * @description
 * - 服务首次以退出码1结束，重启后以0结束
 * - 首次失败触发恰好一次重启，干净退出后不再重启
 */
func TestRestartOnFailurePolicy(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "marker")
	script := "if [ -e " + marker + " ]; then exit 0; else touch " + marker + "; exit 1; fi"
	specs := []models.ServiceSpecification{
		{Name: "flaky", Command: "sh", Args: []string{"-c", script}, Restart: models.RestartOnFailure},
	}
	s := NewSupervisor(specs, 2*time.Second)

	cancel, done := runSupervisor(s)

	svc := s.GetInstance("flaky")
	deadline := time.Now().Add(10 * time.Second)
	for {
		detail := s.GetServiceDetail(svc)
		if detail.Status == models.StatusTerminated {
			if detail.Restarts != 1 {
				t.Errorf("重启次数错误: 期望=1, 实际=%d", detail.Restarts)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("服务未按预期结束: %+v", detail)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	if code := waitForCode(t, done, 10*time.Second); code != 0 {
		t.Errorf("干净停机的退出码应为0, 实际=%d", code)
	}
}

/**
 * TestNoRestartOnCleanExit 测试on-failure策略下干净退出不重启
 */
func TestNoRestartOnCleanExit(t *testing.T) {
	specs := []models.ServiceSpecification{
		{Name: "oneshot", Command: "sh", Args: []string{"-c", "exit 0"}, Restart: models.RestartOnFailure},
	}
	s := NewSupervisor(specs, time.Second)

	cancel, done := runSupervisor(s)

	svc := s.GetInstance("oneshot")
	deadline := time.Now().Add(10 * time.Second)
	for {
		detail := s.GetServiceDetail(svc)
		if detail.Status == models.StatusTerminated {
			if detail.Restarts != 0 {
				t.Errorf("干净退出不应重启: 实际重启%d次", detail.Restarts)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("服务未按预期结束: %+v", detail)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	waitForCode(t, done, 10*time.Second)
}

/**
 * TestShutdownReverseOrder 测试停机时按启动逆序终止
 * @description
 * - 按A,B,C顺序启动三个服务
 * - 停机时按C,B,A顺序收到终止请求
 */
func TestShutdownReverseOrder(t *testing.T) {
	orderFile := filepath.Join(t.TempDir(), "order.txt")
	mkSpec := func(name string) models.ServiceSpecification {
		script := "trap 'echo " + name + " >> " + orderFile + "; exit 0' TERM; while :; do sleep 0.05; done"
		return models.ServiceSpecification{Name: name, Command: "sh", Args: []string{"-c", script}}
	}
	specs := []models.ServiceSpecification{mkSpec("A"), mkSpec("B"), mkSpec("C")}
	s := NewSupervisor(specs, 5*time.Second)

	cancel, done := runSupervisor(s)

	// 等待全部服务运行
	deadline := time.Now().Add(10 * time.Second)
	for s.ActiveCount() != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("服务未全部启动: %d/3", s.ActiveCount())
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	if code := waitForCode(t, done, 15*time.Second); code != 0 {
		t.Errorf("干净停机的退出码应为0, 实际=%d", code)
	}

	data, err := os.ReadFile(orderFile)
	if err != nil {
		t.Fatalf("读取终止顺序失败: %v", err)
	}
	got := strings.Fields(string(data))
	want := []string{"C", "B", "A"}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("终止顺序错误: 期望=%v, 实际=%v", want, got)
	}
}

/**
 * TestGraceTimeoutForcesKill 测试宽限期超时强杀
 * @description
 * - 子进程忽略终止信号
 * - 宽限期后被强杀，整体退出码为非0
 */
func TestGraceTimeoutForcesKill(t *testing.T) {
	specs := []models.ServiceSpecification{
		{Name: "stubborn", Command: "sh", Args: []string{"-c", "trap '' TERM; while :; do sleep 0.05; done"}},
	}
	s := NewSupervisor(specs, 500*time.Millisecond)

	cancel, done := runSupervisor(s)

	deadline := time.Now().Add(10 * time.Second)
	for s.ActiveCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("服务未启动")
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	if code := waitForCode(t, done, 15*time.Second); code == 0 {
		t.Errorf("强杀后的退出码应为非0")
	}
}

/**
 * TestRestartServiceReplacesProcess 测试RestartService入口
 * @description
 * - 监控期间经API入口重启服务
 * - 旧进程被回收，新进程以不同PID运行，停机仍然干净
 */
func TestRestartServiceReplacesProcess(t *testing.T) {
	specs := []models.ServiceSpecification{
		{Name: "web", Command: "sh", Args: []string{"-c", "while :; do sleep 0.05; done"}},
	}
	s := NewSupervisor(specs, 2*time.Second)

	cancel, done := runSupervisor(s)

	deadline := time.Now().Add(10 * time.Second)
	for s.ActiveCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("服务未启动")
		}
		time.Sleep(50 * time.Millisecond)
	}
	svc := s.GetInstance("web")
	oldPid := s.GetServiceDetail(svc).Pid

	if err := s.RestartService("web"); err != nil {
		t.Fatalf("重启服务失败: %v", err)
	}

	deadline = time.Now().Add(10 * time.Second)
	for {
		detail := s.GetServiceDetail(svc)
		if detail.Status == models.StatusRunning && detail.Pid != oldPid {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("重启后服务未以新进程运行: %+v", detail)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	if code := waitForCode(t, done, 10*time.Second); code != 0 {
		t.Errorf("重启后干净停机的退出码应为0, 实际=%d", code)
	}
}

/**
 * TestStateReadableDuringRun 测试监控期间并发读取状态和报告
 * @description
 * - API处理器在监控循环运行时并发调用State和StagingReport
 * - 停机后状态为stopped (配合-race验证无数据竞争)
 */
func TestStateReadableDuringRun(t *testing.T) {
	specs := []models.ServiceSpecification{
		{Name: "steady", Command: "sh", Args: []string{"-c", "while :; do sleep 0.05; done"}},
	}
	s := NewSupervisor(specs, 2*time.Second)
	s.SetStagingReport(&models.StagingReport{TotalFiles: 1})

	cancel, done := runSupervisor(s)

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				_ = s.State()
				if r := s.StagingReport(); r == nil {
					return
				}
			}
		}
	}()

	deadline := time.Now().Add(10 * time.Second)
	for s.ActiveCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("服务未启动")
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	waitForCode(t, done, 10*time.Second)
	close(stop)

	if s.State() != StateStopped {
		t.Errorf("supervisor状态错误: 期望=stopped, 实际=%s", s.State())
	}
}

/**
 * TestNonFatalLaunchErrorContinues 测试非fatal启动失败不影响后续服务
 */
func TestNonFatalLaunchErrorContinues(t *testing.T) {
	specs := []models.ServiceSpecification{
		{Name: "broken", Command: "/no/such/binary"},
		{Name: "healthy", Command: "sh", Args: []string{"-c", "while :; do sleep 0.05; done"}},
	}
	s := NewSupervisor(specs, 2*time.Second)

	cancel, done := runSupervisor(s)

	deadline := time.Now().Add(10 * time.Second)
	for s.ActiveCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("后续服务未启动")
		}
		time.Sleep(50 * time.Millisecond)
	}

	broken := s.GetServiceDetail(s.GetInstance("broken"))
	if broken.ExitCode != models.LaunchErrorCode {
		t.Errorf("启动失败的退出码错误: %d", broken.ExitCode)
	}

	cancel()
	if code := waitForCode(t, done, 10*time.Second); code != 0 {
		t.Errorf("非fatal启动失败不应影响干净停机: 退出码=%d", code)
	}
}
