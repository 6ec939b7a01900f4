package repository

import (
	"context"
	"sync"

	"hourplan/internal/model"
)

// ConfigRepository 全局配置访问接口。
// 配置按不可变值处理：Get 返回深拷贝，Update 整体替换。
type ConfigRepository interface {
	Get(ctx context.Context) (*model.GlobalConfig, error)
	Update(ctx context.Context, cfg *model.GlobalConfig) error
}

// configRepo ConfigRepository 的内存实现
type configRepo struct {
	mu  sync.RWMutex
	cfg *model.GlobalConfig
}

// NewConfigRepo 创建 ConfigRepository 实例
func NewConfigRepo() ConfigRepository {
	return &configRepo{}
}

func (r *configRepo) Get(_ context.Context) (*model.GlobalConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cfg == nil {
		return nil, ErrNotFound
	}
	return r.cfg.Clone(), nil
}

func (r *configRepo) Update(_ context.Context, cfg *model.GlobalConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg.Clone()
	return nil
}
