// Code generated manually for testing. Update as needed.

package mocks

import (
	"context"

	"github.com/luxfi/lc1c/pkg/genesis"
	"github.com/stretchr/testify/mock"
)

// ProcessManager is a mock implementation of orchestrator.ProcessManager
type ProcessManager struct {
	mock.Mock
}

func (m *ProcessManager) Install(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *ProcessManager) VerifyInstallation(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *ProcessManager) InstallGenesisCreator(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *ProcessManager) ListChainFolders(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *ProcessManager) LaunchTemplate(ctx context.Context, payload genesis.LaunchPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *ProcessManager) KillChain(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
