package usecase

import (
	"context"

	"blog-client/internal/entity"
	"blog-client/internal/imageset"
	"blog-client/internal/repo/remote"

	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock implementation of remote.PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context) ([]entity.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Post), args.Error(1)
}

func (m *MockPostRepository) Search(ctx context.Context, query string) ([]entity.Post, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, fields entity.FormFields, images []imageset.Local) error {
	args := m.Called(ctx, fields, images)
	return args.Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, id string, fields entity.FormFields, images []imageset.Local) error {
	args := m.Called(ctx, id, fields, images)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ remote.PostRepository = (*MockPostRepository)(nil)
