package service

import (
	"sort"
	"sync"

	"dossier/internal/search/models"
	"dossier/internal/source"
)

// collector gathers findings and per-source bookkeeping from concurrent
// adapter calls. Each task owns its findings until they land here; the
// flatten into one slice happens under the lock.
type collector struct {
	mu       sync.Mutex
	findings []models.Finding
	status   map[string]*models.SourceStatus
}

func newCollector() *collector {
	return &collector{status: make(map[string]*models.SourceStatus)}
}

func (c *collector) add(findings []models.Finding) {
	if len(findings) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findings = append(c.findings, findings...)
}

func (c *collector) recordCall(sourceName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(sourceName).Calls++
}

func (c *collector) recordFailure(sourceName string, category source.ErrorCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entry(sourceName)
	entry.Failures++
	entry.LastError = string(category)
}

// entry must be called with the lock held.
func (c *collector) entry(sourceName string) *models.SourceStatus {
	if s, ok := c.status[sourceName]; ok {
		return s
	}
	s := &models.SourceStatus{Source: sourceName}
	c.status[sourceName] = s
	return s
}

func (c *collector) all() []models.Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findings
}

// statuses returns the per-source summary sorted by source name.
func (c *collector) statuses() []models.SourceStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.SourceStatus, 0, len(c.status))
	for _, s := range c.status {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
