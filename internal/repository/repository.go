package repository

import "errors"

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Config  ConfigRepository
	Project ProjectRepository
}

// NewRepository 创建内存实现的 Repository 聚合
func NewRepository() *Repository {
	return &Repository{
		Config:  NewConfigRepo(),
		Project: NewProjectRepo(),
	}
}

