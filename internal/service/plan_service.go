package service

import (
	"context"

	"go.uber.org/zap"

	"hourplan/internal/dto"
	"hourplan/internal/repository"
)

// PlanService 排期编排业务接口
//
// optimize 动作的固定顺序：先解析占位槽（让优化器看到真实负载归属），
// 再做时序优化，最后生成网格。网格生成本身独立于编排，任何数据变更
// 后都可单独调用 ScheduleService 重新渲染。
type PlanService interface {
	// Optimize 执行指派 → 时序优化 → 网格生成的完整流水线
	Optimize(ctx context.Context) (*dto.PlanResult, error)
}

type planService struct {
	repo     *repository.Repository
	assign   AssignService
	optimize OptimizeService
	schedule ScheduleService
	logger   *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(
	repo *repository.Repository,
	assign AssignService,
	optimize OptimizeService,
	schedule ScheduleService,
	logger *zap.Logger,
) PlanService {
	return &planService{
		repo:     repo,
		assign:   assign,
		optimize: optimize,
		schedule: schedule,
		logger:   logger,
	}
}

func (s *planService) Optimize(ctx context.Context) (*dto.PlanResult, error) {
	assignResult, err := s.assign.ResolvePlaceholders(ctx)
	if err != nil {
		return nil, err
	}

	optimizeResult, err := s.optimize.FlattenTimings(ctx)
	if err != nil {
		return nil, err
	}

	scheduleData, err := s.schedule.BuildSchedule(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("排期流水线执行完成",
		zap.Int("resolved", len(assignResult.Resolved)),
		zap.Int("warnings", len(assignResult.Warnings)),
		zap.Int("moved", len(optimizeResult.Changes)))

	return &dto.PlanResult{
		Assign:   assignResult,
		Optimize: optimizeResult,
		Schedule: scheduleData,
	}, nil
}

