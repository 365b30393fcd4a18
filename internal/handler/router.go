package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/labops/labops-api/internal/middleware"
	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Laboratory *LaboratoryHandler
	Resource   *ResourceHandler
	Schedule   *ScheduleHandler
	WorkOrder  *WorkOrderHandler
	Gantt      *GanttHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts all endpoints under the API prefix. Write access to
// the registries is limited to admins and supervisors; schedule booking and
// the chart are open to every authenticated role.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Metrics)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(auth))

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/me", h.Auth.Me)

	authed.GET("/laboratories", h.Laboratory.List)
	authed.GET("/laboratories/:id", h.Laboratory.Get)
	authed.GET("/resources", h.Resource.List)
	authed.GET("/resources/:id", h.Resource.Get)
	authed.GET("/resources/:id/schedules", h.Schedule.ListByResource)
	authed.GET("/work-orders", h.WorkOrder.List)
	authed.GET("/work-orders/:id", h.WorkOrder.Get)

	authed.GET("/schedules", h.Schedule.List)
	authed.GET("/schedules/:id", h.Schedule.Get)
	authed.POST("/schedules", h.Schedule.Create)
	authed.PUT("/schedules/:id", h.Schedule.Update)
	authed.DELETE("/schedules/:id", h.Schedule.Delete)

	authed.GET("/gantt", h.Gantt.Chart)
	authed.POST("/gantt/selection", h.Gantt.CommitSelection)

	authed.GET("/schedules/export", h.Export.Schedules)
	authed.GET("/exports/schedules.csv", h.Export.ScheduleCSV)
	authed.GET("/exports/schedules.pdf", h.Export.SchedulePDF)
	authed.GET("/exports/chart.pdf", h.Export.ChartPDF)

	elevated := authed.Group("")
	elevated.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor))

	elevated.POST("/laboratories", h.Laboratory.Create)
	elevated.PUT("/laboratories/:id", h.Laboratory.Update)
	elevated.DELETE("/laboratories/:id", h.Laboratory.Deactivate)

	elevated.POST("/resources", h.Resource.Create)
	elevated.PUT("/resources/:id", h.Resource.Update)
	elevated.DELETE("/resources/:id", h.Resource.Deactivate)

	elevated.POST("/work-orders", h.WorkOrder.Create)
	elevated.PUT("/work-orders/:id", h.WorkOrder.Update)
	elevated.DELETE("/work-orders/:id", h.WorkOrder.Delete)
}
