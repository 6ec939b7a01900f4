package service

import (
	"go.uber.org/zap"

	"hourplan/config"
	"hourplan/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Loader   LoaderService
	Assign   AssignService
	Optimize OptimizeService
	Schedule ScheduleService
	Plan     PlanService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	assign := NewAssignService(repo, logger)
	optimize := NewOptimizeService(repo, cfg, logger)
	schedule := NewScheduleService(repo, cfg, logger)

	return &Service{
		Loader:   NewLoaderService(repo, logger),
		Assign:   assign,
		Optimize: optimize,
		Schedule: schedule,
		Plan:     NewPlanService(repo, assign, optimize, schedule, logger),
		Export:   NewExportService(cfg, schedule, logger),
	}
}

