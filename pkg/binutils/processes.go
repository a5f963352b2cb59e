// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package binutils

import (
	"context"
	"fmt"

	luxlog "github.com/luxfi/log"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/orchestrator"
)

// KillChain stops the node. The tracked child is killed and reaped first;
// without one, any process named like the node is killed, which covers nodes
// started by an earlier run of this tool.
func (m *Manager) KillChain(ctx context.Context) error {
	m.mu.Lock()
	cmd, exited := m.node, m.exited
	if cmd != nil {
		m.killing = true
	}
	m.mu.Unlock()

	if cmd != nil {
		if err := cmd.Process.Kill(); err != nil {
			m.log.Debug("kill of tracked node failed", zap.Error(err))
		}
		select {
		case <-exited:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return killNodeProcesses(ctx, m.log)
}

// killNodeProcesses kills every process running the node executable.
func killNodeProcesses(ctx context.Context, log luxlog.Logger) error {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed listing processes: %w", err)
	}
	killed := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if name != constants.NodeBinaryName && name != constants.NodeWindowsBinaryName {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			return fmt.Errorf("could not kill process with pid %d: %w", p.Pid, err)
		}
		log.Debug("killed node process", zap.Int32("pid", p.Pid))
		killed++
	}
	if killed == 0 {
		return orchestrator.ErrNoChainRunning
	}
	return nil
}
