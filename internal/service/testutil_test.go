package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"hourplan/config"
	"hourplan/internal/model"
	"hourplan/internal/repository"
)

// ── 测试辅助 ──

// testAppConfig 测试用应用配置（固定随机种子保证可复现）
func testAppConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			OptimizerIterations: 5000,
			RandomSeed:          42,
		},
		Export:  config.ExportConfig{SheetName: "排期表"},
		Log:     config.LogConfig{Level: "info", Format: "console"},
		Feature: config.FeatureConfig{AutoSplit: false},
	}
}

// newTestRepo 构建内存仓库并写入全局配置与项目
func newTestRepo(t *testing.T, cfg *model.GlobalConfig, projects ...*model.Project) *repository.Repository {
	t.Helper()
	repo := repository.NewRepository()
	ctx := context.Background()
	if err := repo.Config.Update(ctx, cfg); err != nil {
		t.Fatalf("写入全局配置失败: %v", err)
	}
	for _, p := range projects {
		if err := repo.Project.Create(ctx, p); err != nil {
			t.Fatalf("写入项目失败: %v", err)
		}
	}
	return repo
}

// testStaff 构建人员类型
func testStaff(id, name, team string, maxHours float64, skills map[string]model.SkillLevel) model.StaffType {
	return model.StaffType{
		ID:              id,
		Name:            name,
		Role:            "顾问",
		MaxHoursPerWeek: maxHours,
		Team:            team,
		Skills:          skills,
	}
}

// singlePhaseProject 构建单阶段项目（占比 100%）
func singlePhaseProject(id, name string, budget float64, offset, maxWeeks int, alloc []model.StaffAllocation) *model.Project {
	return &model.Project{
		ID:              id,
		Name:            name,
		BudgetHours:     budget,
		StartWeekOffset: offset,
		Phases: []model.PhaseConfig{
			{
				Name:            model.PhaseFieldwork,
				PercentBudget:   100,
				MinWeeks:        1,
				MaxWeeks:        maxWeeks,
				StaffAllocation: alloc,
			},
		},
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }
