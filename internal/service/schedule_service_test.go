package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hourplan/config"
	"hourplan/internal/model"
)

func setupSchedule(t *testing.T, appCfg *config.Config, cfg *model.GlobalConfig, projects ...*model.Project) ScheduleService {
	t.Helper()
	repo := newTestRepo(t, cfg, projects...)
	return NewScheduleService(repo, appCfg, nopLogger())
}

func roleAConfig() *model.GlobalConfig {
	return &model.GlobalConfig{
		Year: 2026,
		StaffTypes: []model.StaffType{
			testStaff("roleA", "角色A", "审计一组", 40, nil),
		},
	}
}

// ── 场景 A：整除预算的单阶段项目 ──

func TestSchedule_ScenarioSingleProject(t *testing.T) {
	// 400 小时 / 4 周 = 每周 100（恰为 4 的倍数）
	p := singlePhaseProject("p1", "年审A", 400, 0, 4, []model.StaffAllocation{
		{Assignee: model.Staff("roleA"), Percentage: 100},
	})

	svc := setupSchedule(t, testAppConfig(), roleAConfig(), p)
	data, err := svc.BuildSchedule(context.Background())
	if err != nil {
		t.Fatalf("BuildSchedule 应成功: %v", err)
	}

	if len(data.Rows) != 1 {
		t.Fatalf("行数 = %d，期望 1", len(data.Rows))
	}
	row := data.Rows[0]
	if row.Split != 1 {
		t.Errorf("分行 = %d，期望 1", row.Split)
	}
	if row.TotalHours != 400 {
		t.Errorf("合计 = %v，期望 400", row.TotalHours)
	}
	if len(row.Cells) != len(data.Headers) {
		t.Fatalf("单元格数 = %d，期望与表头一致 %d", len(row.Cells), len(data.Headers))
	}
	for w := 0; w < 4; w++ {
		if row.Cells[w].Hours != 100 {
			t.Errorf("第 %d 周 = %v，期望 100", w, row.Cells[w].Hours)
		}
		if row.Cells[w].Phase == nil || *row.Cells[w].Phase != model.PhaseFieldwork {
			t.Errorf("第 %d 周阶段标注缺失或错误", w)
		}
		if row.Cells[w].IsOverride {
			t.Errorf("第 %d 周不应标记覆盖", w)
		}
	}
	if row.Cells[4].Hours != 0 {
		t.Errorf("第 4 周 = %v，期望 0", row.Cells[4].Hours)
	}
}

// ── 场景 B：占比为 0 不产出行 ──

func TestSchedule_ZeroPercentageNoRow(t *testing.T) {
	p := singlePhaseProject("p1", "年审A", 400, 0, 4, []model.StaffAllocation{
		{Assignee: model.Staff("roleA"), Percentage: 0},
	})

	svc := setupSchedule(t, testAppConfig(), roleAConfig(), p)
	data, _ := svc.BuildSchedule(context.Background())
	if len(data.Rows) != 0 {
		t.Errorf("行数 = %d，占比 0 不应产出行", len(data.Rows))
	}
}

// ── 覆盖优先 ──

func TestSchedule_HourOverridePrecedence(t *testing.T) {
	p := singlePhaseProject("p1", "年审A", 400, 0, 4, []model.StaffAllocation{
		{Assignee: model.Staff("roleA"), Percentage: 100},
	})

	svc := setupSchedule(t, testAppConfig(), roleAConfig(), p)
	headers, _ := svc.BuildSchedule(context.Background())

	// 覆盖第 2 周为 7 小时（非 4 的倍数：覆盖值原样生效，不经取整）
	p.Overrides.Hours = map[model.CellKey]map[string]float64{
		{StaffTypeID: "roleA", Split: 1}: {headers.Headers[1]: 7},
	}
	svc = setupSchedule(t, testAppConfig(), roleAConfig(), p)
	data, _ := svc.BuildSchedule(context.Background())

	row := data.Rows[0]
	if row.Cells[1].Hours != 7 || !row.Cells[1].IsOverride {
		t.Errorf("覆盖单元格 = %v (override=%v)，期望 7 (true)", row.Cells[1].Hours, row.Cells[1].IsOverride)
	}
	if row.Cells[0].Hours != 100 || row.Cells[0].IsOverride {
		t.Errorf("未覆盖单元格被改动: %v", row.Cells[0])
	}
	if row.TotalHours != 100+7+100+100 {
		t.Errorf("合计 = %v，期望 307", row.TotalHours)
	}
}

func TestSchedule_PhaseOverrideForcesWeek(t *testing.T) {
	p := &model.Project{
		ID: "p1", Name: "年审A", BudgetHours: 400, StartWeekOffset: 0,
		Phases: []model.PhaseConfig{
			{Name: model.PhasePlanning, PercentBudget: 50, MaxWeeks: 2,
				StaffAllocation: []model.StaffAllocation{{Assignee: model.Staff("roleA"), Percentage: 100}}},
			{Name: model.PhaseFieldwork, PercentBudget: 50, MaxWeeks: 2,
				StaffAllocation: []model.StaffAllocation{{Assignee: model.Staff("roleA"), Percentage: 100}}},
		},
	}

	svc := setupSchedule(t, testAppConfig(), roleAConfig(), p)
	base, _ := svc.BuildSchedule(context.Background())

	// 第 1 周本为 planning，强制改为 fieldwork
	p.Overrides.Phase = map[string]model.PhaseName{base.Headers[0]: model.PhaseFieldwork}
	svc = setupSchedule(t, testAppConfig(), roleAConfig(), p)
	data, _ := svc.BuildSchedule(context.Background())

	cell := data.Rows[0].Cells[0]
	if cell.Phase == nil || *cell.Phase != model.PhaseFieldwork {
		t.Errorf("第 0 周阶段 = %v，期望被覆盖为 fieldwork", cell.Phase)
	}
}

// ── 工时守恒（±4 容差）──

func TestSchedule_AllocationConservation(t *testing.T) {
	cfg := &model.GlobalConfig{
		Year: 2026,
		StaffTypes: []model.StaffType{
			testStaff("roleA", "角色A", "审计一组", 40, nil),
			testStaff("roleB", "角色B", "审计一组", 40, nil),
		},
	}
	// 400 × 100% 阶段，3 周：每角色速率 66.67 → 取整产生舍入余量
	p := singlePhaseProject("p1", "年审A", 400, 0, 3, []model.StaffAllocation{
		{Assignee: model.Staff("roleA"), Percentage: 50},
		{Assignee: model.Staff("roleB"), Percentage: 50},
	})

	svc := setupSchedule(t, testAppConfig(), cfg, p)
	data, _ := svc.BuildSchedule(context.Background())

	phaseBudget := 400.0
	var emitted float64
	for _, row := range data.Rows {
		emitted += row.TotalHours
	}
	// 每个角色的舍入误差不超过 ±4
	tolerance := 4.0 * float64(len(data.Rows))
	if math.Abs(emitted-phaseBudget) > tolerance {
		t.Errorf("产出工时 %v 偏离预算 %v 超出容差 %v", emitted, phaseBudget, tolerance)
	}
}

// ── 分行 ──

func TestSchedule_SplitRowsFromOverrideReference(t *testing.T) {
	p := singlePhaseProject("p1", "年审A", 400, 0, 4, []model.StaffAllocation{
		{Assignee: model.Staff("roleA"), Percentage: 100},
	})

	svc := setupSchedule(t, testAppConfig(), roleAConfig(), p)
	base, _ := svc.BuildSchedule(context.Background())

	// 覆盖键引用分行 2 → 该人员类型产出 2 行，计算值按分行数均摊
	p.Overrides.Hours = map[model.CellKey]map[string]float64{
		{StaffTypeID: "roleA", Split: 2}: {base.Headers[0]: 12},
	}
	svc = setupSchedule(t, testAppConfig(), roleAConfig(), p)
	data, _ := svc.BuildSchedule(context.Background())

	if len(data.Rows) != 2 {
		t.Fatalf("行数 = %d，期望 2", len(data.Rows))
	}
	if data.Rows[0].Split != 1 || data.Rows[1].Split != 2 {
		t.Errorf("分行序号 = %d/%d，期望 1/2", data.Rows[0].Split, data.Rows[1].Split)
	}
	// 100 / 2 分行 = 50 → 取整 52
	if data.Rows[0].Cells[0].Hours != 52 {
		t.Errorf("分行 1 第 0 周 = %v，期望 52", data.Rows[0].Cells[0].Hours)
	}
	if data.Rows[1].Cells[0].Hours != 12 || !data.Rows[1].Cells[0].IsOverride {
		t.Errorf("分行 2 第 0 周 = %v，期望覆盖值 12", data.Rows[1].Cells[0].Hours)
	}
}

func TestSchedule_AutoSplitFlag(t *testing.T) {
	// 峰值速率 100 超出容量 40：开启 auto_split 时按容量分 3 行
	p := singlePhaseProject("p1", "年审A", 400, 0, 4, []model.StaffAllocation{
		{Assignee: model.Staff("roleA"), Percentage: 100},
	})

	appCfg := testAppConfig()
	svc := setupSchedule(t, appCfg, roleAConfig(), p)
	data, _ := svc.BuildSchedule(context.Background())
	if len(data.Rows) != 1 {
		t.Fatalf("默认关闭 auto_split 时行数 = %d，期望 1", len(data.Rows))
	}

	appCfg = testAppConfig()
	appCfg.Feature.AutoSplit = true
	svc = setupSchedule(t, appCfg, roleAConfig(), p)
	data, _ = svc.BuildSchedule(context.Background())
	if len(data.Rows) != 3 {
		t.Fatalf("开启 auto_split 时行数 = %d，期望 3", len(data.Rows))
	}
	// 100 / 3 分行 = 33.33 → 取整 32
	for _, row := range data.Rows {
		if row.Cells[0].Hours != 32 {
			t.Errorf("分行 %d 第 0 周 = %v，期望 32", row.Split, row.Cells[0].Hours)
		}
	}
}

// ── 显式分配但区间外仍产出行 ──

func TestSchedule_ExplicitAllocationEmitsEmptyRow(t *testing.T) {
	// 起始偏移在时间线之外：无正工时单元格，但显式分配仍产出分行 1
	p := singlePhaseProject("p1", "远期项目", 400, 60, 4, []model.StaffAllocation{
		{Assignee: model.Staff("roleA"), Percentage: 100},
	})

	svc := setupSchedule(t, testAppConfig(), roleAConfig(), p)
	data, _ := svc.BuildSchedule(context.Background())
	if len(data.Rows) != 1 {
		t.Fatalf("行数 = %d，期望 1（显式分配的空行）", len(data.Rows))
	}
	if data.Rows[0].TotalHours != 0 {
		t.Errorf("合计 = %v，期望 0", data.Rows[0].TotalHours)
	}
}

// ── 幂等性 ──

func TestSchedule_Idempotent(t *testing.T) {
	p := singlePhaseProject("p1", "年审A", 400, 0, 4, []model.StaffAllocation{
		{Assignee: model.Staff("roleA"), Percentage: 100},
	})
	p.Overrides.Hours = map[model.CellKey]map[string]float64{
		{StaffTypeID: "roleA", Split: 1}: {"2026-01-12": 16},
	}

	svc := setupSchedule(t, testAppConfig(), roleAConfig(), p)
	first, err := svc.BuildSchedule(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.BuildSchedule(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("相同输入两次生成结果不一致 (-first +second):\n%s", diff)
	}
}

