package run

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"stagekeeper/cmd/root"
	"stagekeeper/controllers"
	"stagekeeper/internal/config"
	"stagekeeper/internal/logger"
	"stagekeeper/internal/middleware"
	"stagekeeper/internal/rpc"
	"stagekeeper/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "暂存已声明的文件并监管部署的服务",
	Long: `容器入口命令。先按部署说明同步暂存文件，随后启动全部服务并阻塞监控，
直到收到停机信号或某个fatal服务退出。进程退出码即supervisor的退出码`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runDaemon(context.Background()))
	},
}

/**
 * Run staging then supervision, blocking until shutdown
 * @param {context.Context} ctx - Context for cancellation
 * @returns {int} Process exit code: 0 clean shutdown, non-zero otherwise
 * @description
 * - Staging must complete before any service starts; a staging
 *   failure aborts startup entirely
 * - The daemon API serves on TCP and a unix socket while supervising
 */
func runDaemon(ctx context.Context) int {
	if err := config.LoadSpec(); err != nil {
		logger.Errorf("Cannot load deployment spec: %v", err)
		return 1
	}
	spec := config.Spec()

	stager := services.NewStager(spec.SyncRules)
	report, err := stager.Stage()
	if err != nil {
		logger.Errorf("Staging failed: %v", err)
		return 1
	}

	supervisor := services.NewSupervisor(spec.Services, config.Config.Supervise.GracePeriod)
	supervisor.SetStagingReport(report)

	startAPIServer(supervisor)

	return supervisor.Run(ctx)
}

func startAPIServer(supervisor *services.Supervisor) {
	mode := config.Config.Server.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())

	apiController := controllers.NewAPIController(supervisor)
	apiController.RegisterRoutes(router)

	addrs := []ListenAddr{
		{Network: "tcp", Address: config.Config.Server.Address},
	}
	if IsUnixSocketSupported() {
		socketPath := rpc.GetSocketPath(config.Config.Server.Socket, "")
		if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
			logger.Errorf("Failed to create socket directory: %v", err)
		} else {
			addrs = append(addrs, ListenAddr{Network: "unix", Address: socketPath})
		}
	}

	listeners, err := CreateListeners(addrs)
	if len(listeners) == 0 {
		logger.Errorf("No API listener available: %v", err)
		return
	}
	for _, listener := range listeners {
		l := listener
		logger.Infof("API listening on %s", l.Addr())
		go func() {
			if err := http.Serve(l, router); err != nil {
				logger.Errorf("API server stopped: %v", err)
			}
		}()
	}
}

func init() {
	root.RootCmd.AddCommand(runCmd)
}
