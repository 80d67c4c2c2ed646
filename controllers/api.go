package controllers

import (
	"fmt"
	"net/http"
	"time"

	"stagekeeper/internal/models"
	"stagekeeper/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Version = "dev"

type APIController struct {
	supervisor *services.Supervisor
	startTime  time.Time
}

/**
 * Create new API controller instance
 * @param {*services.Supervisor} supervisor - Supervisor owning the child services
 * @returns {*APIController} New API controller instance
 * @description
 * - The controller only reads supervisor state and forwards
 *   start/stop/restart requests, it owns no processes itself
 */
func NewAPIController(supervisor *services.Supervisor) *APIController {
	return &APIController{
		supervisor: supervisor,
		startTime:  time.Now(),
	}
}

/**
 * Register all API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Registers routes for:
 *   - Service management (list/detail/start/stop/restart)
 *   - Staging report of the current run
 *   - Health check and Prometheus metrics
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/stagekeeper/api/v1/services", a.ListServices)
	r.GET("/stagekeeper/api/v1/services/:name", a.GetService)
	r.POST("/stagekeeper/api/v1/services/:name/start", a.StartService)
	r.POST("/stagekeeper/api/v1/services/:name/stop", a.StopService)
	r.POST("/stagekeeper/api/v1/services/:name/restart", a.RestartService)
	r.GET("/stagekeeper/api/v1/staging", a.StagingReport)
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// @Summary 列出所有受管服务
// @Success 200 {array} models.ServiceDetail
// @Router /stagekeeper/api/v1/services [get]
func (a *APIController) ListServices(c *gin.Context) {
	var details []models.ServiceDetail
	for _, svc := range a.supervisor.GetInstances() {
		details = append(details, a.supervisor.GetServiceDetail(svc))
	}
	c.JSON(http.StatusOK, details)
}

// @Summary 查询单个服务详情
// @Router /stagekeeper/api/v1/services/{name} [get]
func (a *APIController) GetService(c *gin.Context) {
	name := c.Param("name")
	svc := a.supervisor.GetInstance(name)
	if svc == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:  "NOT_FOUND",
			Error: fmt.Sprintf("service %s not found", name),
		})
		return
	}
	c.JSON(http.StatusOK, a.supervisor.GetServiceDetail(svc))
}

// @Summary 启动服务
// @Router /stagekeeper/api/v1/services/{name}/start [post]
func (a *APIController) StartService(c *gin.Context) {
	name := c.Param("name")
	if err := a.supervisor.StartService(name); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:  "START_FAILED",
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "started"})
}

// @Summary 停止服务
// @Router /stagekeeper/api/v1/services/{name}/stop [post]
func (a *APIController) StopService(c *gin.Context) {
	name := c.Param("name")
	if err := a.supervisor.StopService(name); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:  "STOP_FAILED",
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stopped"})
}

// @Summary 重启服务
// @Router /stagekeeper/api/v1/services/{name}/restart [post]
func (a *APIController) RestartService(c *gin.Context) {
	name := c.Param("name")
	if err := a.supervisor.RestartService(name); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:  "RESTART_FAILED",
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "restarted"})
}

// @Summary 查询本次启动的暂存结果
// @Router /stagekeeper/api/v1/staging [get]
func (a *APIController) StagingReport(c *gin.Context) {
	report := a.supervisor.StagingReport()
	if report == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:  "NO_REPORT",
			Error: "no staging run recorded",
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary 健康检查
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	staged := 0
	if report := a.supervisor.StagingReport(); report != nil {
		staged = report.TotalFiles
	}
	c.JSON(http.StatusOK, models.HealthResponse{
		Version:   Version,
		StartTime: a.startTime.Format(time.RFC3339),
		Status:    "UP",
		Uptime:    time.Since(a.startTime).Round(time.Second).String(),
		Metrics: models.Metrics{
			TotalRequests:  services.GetTotalRequestCount(),
			ErrorRequests:  services.GetTotalErrorCount(),
			ActiveServices: a.supervisor.ActiveCount(),
			StagedFiles:    staged,
		},
	})
}
