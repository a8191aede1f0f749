package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type ModerationService struct {
	mock.Mock
}

func (m *ModerationService) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *ModerationService) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *ModerationService) Check(text string) (bool, error) {
	args := m.Called(text)
	return args.Bool(0), args.Error(1)
}

func (m *ModerationService) Matches(text string) ([]string, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
