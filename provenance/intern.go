package provenance

import (
	"sync"

	"github.com/teranos/tally/config"
)

// ID interning. High-volume repeated calculations produce many copies of the
// same 64-byte hex id; deduplicating them to one shared string instance cuts
// memory without affecting equality: interned and non-interned ids compare
// equal, only identity differs.

const maxInternedIDs = 100000

var (
	internMu    sync.Mutex
	internTable map[string]string

	internHits   uint64
	internMisses uint64
)

// InternStats reports interning-table occupancy for diagnostics.
type InternStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Intern returns the canonical shared instance of id. Interning is bypassed
// when weak-reference bookkeeping is disabled, and the table stops growing
// at its bound rather than evicting (ids are uniformly small).
func Intern(id string) string {
	if !config.Active().EnableWeakRefs {
		return id
	}

	internMu.Lock()
	defer internMu.Unlock()

	if internTable == nil {
		internTable = make(map[string]string)
	}
	if canonical, ok := internTable[id]; ok {
		internHits++
		return canonical
	}
	internMisses++
	if len(internTable) < maxInternedIDs {
		internTable[id] = id
	}
	return id
}

// GetInternStats returns a snapshot of interning counters.
func GetInternStats() InternStats {
	internMu.Lock()
	defer internMu.Unlock()
	return InternStats{
		Hits:    internHits,
		Misses:  internMisses,
		Entries: len(internTable),
	}
}

func resetInternTable() {
	internMu.Lock()
	defer internMu.Unlock()
	internTable = nil
	internHits = 0
	internMisses = 0
}
