package ledger

// instrumentedLedger records hit and miss counters for Seen under the group label.
type instrumentedLedger struct {
	inner Ledger
	group string
}

// newInstrumentedLedger wraps inner and registers a lazy entries collector
// that calls inner.Len() at scrape time.
func newInstrumentedLedger(inner Ledger, group string) *instrumentedLedger {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedLedger{inner: inner, group: group}
}

func (l *instrumentedLedger) Seen(id int64) bool {
	ok := l.inner.Seen(id)
	if ok {
		HitsTotal.WithLabelValues(l.group).Inc()
	} else {
		MissesTotal.WithLabelValues(l.group).Inc()
	}
	return ok
}

func (l *instrumentedLedger) Mark(id int64) {
	l.inner.Mark(id)
}

func (l *instrumentedLedger) Len() int {
	return l.inner.Len()
}

// Close unregisters the entries collector and closes the underlying ledger.
func (l *instrumentedLedger) Close() error {
	unregisterEntriesCollector(l.group)
	return l.inner.Close()
}
