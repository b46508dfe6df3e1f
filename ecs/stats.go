package ecs

import (
	"cmp"
	"slices"
)

// WorldStats is a point-in-time summary of a World's contents.
type WorldStats struct {
	EntityCount        int
	EntityCapacity     int
	ComponentTypeCount int
	SingletonCount     int
	StorageBreakdown   []StorageStats
	SingletonTypes     []string
}

// StorageStats describes one component storage.
type StorageStats struct {
	ComponentType string
	Count         int
}

// CollectStats gathers entity, storage and singleton counts. Storages are
// listed by descending size, then by type name.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		EntityCount:        w.entities.Len(),
		EntityCapacity:     w.entities.Capacity(),
		ComponentTypeCount: len(w.storages),
		SingletonCount:     len(w.singletons),
		StorageBreakdown:   make([]StorageStats, 0, len(w.storages)),
		SingletonTypes:     make([]string, 0, len(w.singletons)),
	}

	for t, storage := range w.storages {
		stats.StorageBreakdown = append(stats.StorageBreakdown, StorageStats{
			ComponentType: t.String(),
			Count:         storage.Len(),
		})
	}
	slices.SortFunc(stats.StorageBreakdown, func(a, b StorageStats) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ComponentType, b.ComponentType)
	})

	for t := range w.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	slices.Sort(stats.SingletonTypes)

	return stats
}
