package repository

import (
	"context"
	"sort"
	"sync"

	"hourplan/internal/model"
)

// ProjectRepository 项目集合访问接口。
// 读操作返回深拷贝，提交时整体写回，调用方之间不共享可变状态。
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// List 按项目名升序返回全部项目
	List(ctx context.Context) ([]*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
	// ReplaceAll 以指派/优化产出的新列表整体替换集合
	ReplaceAll(ctx context.Context, projects []*model.Project) error
}

// projectRepo ProjectRepository 的内存实现
type projectRepo struct {
	mu       sync.RWMutex
	projects map[string]*model.Project
}

// NewProjectRepo 创建 ProjectRepository 实例
func NewProjectRepo() ProjectRepository {
	return &projectRepo{projects: make(map[string]*model.Project)}
}

func (r *projectRepo) Create(_ context.Context, project *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[project.ID] = project.Clone()
	return nil
}

func (r *projectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.projects[id]; ok {
		return p.Clone(), nil
	}
	return nil, ErrNotFound
}

func (r *projectRepo) List(_ context.Context) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		result = append(result, p.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *projectRepo) Update(_ context.Context, project *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; !ok {
		return ErrNotFound
	}
	r.projects[project.ID] = project.Clone()
	return nil
}

func (r *projectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *projectRepo) ReplaceAll(_ context.Context, projects []*model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]*model.Project, len(projects))
	for _, p := range projects {
		next[p.ID] = p.Clone()
	}
	r.projects = next
	return nil
}

