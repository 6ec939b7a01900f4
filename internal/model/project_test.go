package model

import "testing"

func fixtureConfig() *GlobalConfig {
	return &GlobalConfig{
		Year: 2026,
		Phases: []PhaseConfig{
			{Name: PhasePlanning, PercentBudget: 40, MaxWeeks: 2,
				StaffAllocation: []StaffAllocation{{Assignee: Placeholder(), Percentage: 100}}},
			{Name: PhaseFieldwork, PercentBudget: 60, MaxWeeks: 3,
				StaffAllocation: []StaffAllocation{{Assignee: Staff("alice"), Percentage: 100}}},
		},
		StaffTypes: []StaffType{
			{ID: "alice", Name: "爱丽丝", MaxHoursPerWeek: 40},
		},
	}
}

// 创建时冻结阶段快照：之后编辑全局配置不追溯影响既有项目
func TestNewProject_FreezesPhaseSnapshot(t *testing.T) {
	cfg := fixtureConfig()
	p := NewProject("年审A", 400, 0, "审计一组", cfg)

	if p.ID == "" {
		t.Error("项目 id 应自动生成")
	}
	if len(p.Phases) != 2 {
		t.Fatalf("快照阶段数 = %d，期望 2", len(p.Phases))
	}

	cfg.Phases[0].MaxWeeks = 9
	cfg.Phases[1].StaffAllocation[0].Percentage = 1
	if p.Phases[0].MaxWeeks != 2 {
		t.Errorf("快照 MaxWeeks = %d，不应随全局配置变动", p.Phases[0].MaxWeeks)
	}
	if p.Phases[1].StaffAllocation[0].Percentage != 100 {
		t.Error("快照人员占比不应随全局配置变动")
	}
}

func TestProject_TotalDuration(t *testing.T) {
	p := NewProject("年审A", 400, 0, "", fixtureConfig())
	if got := p.TotalDuration(); got != 5 {
		t.Errorf("TotalDuration = %d，期望 2+3=5", got)
	}
}

func TestProject_CloneIsDeep(t *testing.T) {
	p := NewProject("年审A", 400, 0, "", fixtureConfig())
	p.RequiredSkills = []string{"IT审计"}
	p.Overrides = Overrides{
		Phase: map[string]PhaseName{"2026-01-05": PhaseReview},
		Hours: map[CellKey]map[string]float64{
			{StaffTypeID: "alice", Split: 1}: {"2026-01-05": 16},
		},
	}

	c := p.Clone()
	c.Phases[0].MaxWeeks = 9
	c.RequiredSkills[0] = "被篡改"
	c.Overrides.Phase["2026-01-05"] = PhaseWrapup
	c.Overrides.Hours[CellKey{StaffTypeID: "alice", Split: 1}]["2026-01-05"] = 0

	if p.Phases[0].MaxWeeks != 2 {
		t.Error("Clone 后阶段快照应相互隔离")
	}
	if p.RequiredSkills[0] != "IT审计" {
		t.Error("Clone 后技能要求应相互隔离")
	}
	if p.Overrides.Phase["2026-01-05"] != PhaseReview {
		t.Error("Clone 后阶段覆盖应相互隔离")
	}
	if p.Overrides.Hours[CellKey{StaffTypeID: "alice", Split: 1}]["2026-01-05"] != 16 {
		t.Error("Clone 后工时覆盖应相互隔离")
	}
}

func TestAssignee_Variants(t *testing.T) {
	if !Placeholder().IsPlaceholder() {
		t.Error("Placeholder 应为占位槽")
	}
	a := Staff("alice")
	if a.IsPlaceholder() || a.StaffTypeID != "alice" {
		t.Errorf("Staff 变体异常: %+v", a)
	}
}

func TestSkillLevel_Score(t *testing.T) {
	cases := []struct {
		lvl  SkillLevel
		want float64
	}{
		{SkillNone, 0},
		{SkillBeginner, 10},
		{SkillIntermediate, 20},
		{SkillAdvanced, 30},
		{SkillLevel("未知"), 0},
	}
	for _, c := range cases {
		if got := c.lvl.Score(); got != c.want {
			t.Errorf("%s.Score() = %v，期望 %v", c.lvl, got, c.want)
		}
	}
}

