// Package ledger keeps the durable record of finished instances and template counters
package ledger

import (
	"context"
	"sync"

	"leviathan-server/pkg/launchpad"
)

var (
	_ launchpad.Ledger = &Memory{}
	_ launchpad.Ledger = &Postgres{}
)

// Memory is a ledger that lives as long as the process
type Memory struct {
	mu        sync.RWMutex
	finished  []*launchpad.Instance
	templates map[string]*launchpad.Template
}

// NewMemory returns an empty ledger
func NewMemory() *Memory {
	return &Memory{
		finished:  make([]*launchpad.Instance, 0),
		templates: make(map[string]*launchpad.Template),
	}
}

// RecordFinished appends the instance
func (m *Memory) RecordFinished(_ context.Context, instance *launchpad.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finished = append(m.finished, instance)
	return nil
}

// RecordTemplateStats replaces the template's counters
func (m *Memory) RecordTemplateStats(_ context.Context, template *launchpad.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.templates[template.ID] = template
	return nil
}

// FinishedInstances returns the finished instances, newest first
func (m *Memory) FinishedInstances(_ context.Context, limit int) ([]*launchpad.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	instances := make([]*launchpad.Instance, 0, len(m.finished))
	for i := len(m.finished) - 1; i >= 0 && (limit <= 0 || len(instances) < limit); i-- {
		instances = append(instances, m.finished[i])
	}

	return instances, nil
}

// TemplateStats returns the recorded counters of a template
func (m *Memory) TemplateStats(_ context.Context, templateID string) (totalGames int, totalStaked float64, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[templateID]
	if !ok {
		return 0, 0, launchpad.ErrTemplateNotFound
	}

	return t.TotalGames, t.TotalStaked, nil
}
