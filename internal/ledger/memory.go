package ledger

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryLedger)
}

// memoryLedger keeps ids in an expirable LRU. It only helps within one process,
// e.g. when the same file is imported twice by a long-running caller.
type memoryLedger struct {
	inner *lru.LRU[int64, struct{}]
}

func newMemoryLedger(cfg ProviderConfig) (Ledger, error) {
	var onEvict func(int64, struct{})
	if cfg.OnEvict != nil {
		onEvict = func(id int64, _ struct{}) {
			cfg.OnEvict(id)
		}
	}
	return &memoryLedger{
		inner: lru.NewLRU[int64, struct{}](cfg.Size, onEvict, cfg.TTL),
	}, nil
}

// Seen goes through Get because Contains does not check expiry.
func (m *memoryLedger) Seen(id int64) bool {
	_, ok := m.inner.Get(id)
	return ok
}

func (m *memoryLedger) Mark(id int64) {
	m.inner.Add(id, struct{}{})
}

func (m *memoryLedger) Len() int {
	return m.inner.Len()
}

func (m *memoryLedger) Close() error {
	return nil
}
