package s0_data

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jwlim/pitfolio/internal/contracts"
	"github.com/jwlim/pitfolio/internal/s2_signals"
	"github.com/jwlim/pitfolio/pkg/logger"
)

// PanelCache holds a parsed, feature-scored copy of the panel file keyed
// by its last-modified timestamp. Every access compares the file's current
// mtime against the cached one and reloads on mismatch before any row is
// served; invalidation is write-staleness, not time-based expiry. Reload
// is idempotent and side-effect free, so concurrent callers racing a
// reload at worst reload redundantly.
type PanelCache struct {
	path     string
	features *s2_signals.FeatureEngine
	logger   *logger.Logger

	mu    sync.RWMutex
	panel *contracts.Panel
	mtime time.Time
}

// NewPanelCache creates a cache over the panel file at path
func NewPanelCache(path string, log *logger.Logger) *PanelCache {
	return &PanelCache{
		path:     path,
		features: s2_signals.NewFeatureEngine(),
		logger:   log,
	}
}

// Get returns the current panel, reloading it first if the backing file
// changed since the last load. A missing backing file is fatal: nothing
// downstream can compute without the panel.
func (c *PanelCache) Get() (*contracts.Panel, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		c.logger.WithError(err).WithField("path", c.path).Error("Panel file not accessible")
		return nil, fmt.Errorf("panel file %s: %w", c.path, err)
	}
	mtime := info.ModTime()

	c.mu.RLock()
	if c.panel != nil && c.mtime.Equal(mtime) {
		panel := c.panel
		c.mu.RUnlock()
		return panel, nil
	}
	c.mu.RUnlock()

	return c.reload(mtime)
}

// reload parses the panel file and replaces the cached copy and its
// timestamp. Rolling features and the momentum score column are derived
// here once so every consumer sees the same scored snapshot.
func (c *PanelCache) reload(mtime time.Time) (*contracts.Panel, error) {
	rows, concepts, err := LoadPanelCSV(c.path)
	if err != nil {
		return nil, fmt.Errorf("load panel: %w", err)
	}

	panel := &contracts.Panel{
		Concepts: concepts,
		Rows:     c.features.Compute(rows),
	}

	c.mu.Lock()
	c.panel = panel
	c.mtime = mtime
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"path":     c.path,
		"rows":     len(panel.Rows),
		"concepts": len(concepts),
	}).Info("Loaded panel")

	return panel, nil
}
