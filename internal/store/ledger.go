package store

import (
	"sync"

	"github.com/efreitasn/ordersplit/internal/domain"
	"github.com/google/btree"
)

// ledgerEntry is an order tagged with its insertion sequence number.
type ledgerEntry struct {
	seq   uint64
	order domain.Order
}

func seqLess(a, b ledgerEntry) bool {
	return a.seq < b.seq
}

// Ledger is a thread-safe, append-only, in-memory history of split orders.
// Orders are kept in insertion order, never reordered or deduplicated, and
// are only removed all at once by ClearHistory. The ledger stores its own
// copy of each order and hands out copies, so callers cannot reach its
// internal state.
type Ledger struct {
	mu      sync.RWMutex
	entries *btree.BTreeG[ledgerEntry]
	nextSeq uint64
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	const degree = 32
	return &Ledger{
		entries: btree.NewG[ledgerEntry](degree, seqLess),
	}
}

// SaveOrder appends a copy of o to the history.
func (l *Ledger) SaveOrder(o *domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries.ReplaceOrInsert(ledgerEntry{seq: l.nextSeq, order: o.Clone()})
	l.nextSeq++
}

// AllOrders returns a snapshot of every order in insertion order.
// Returns an empty slice if the ledger is empty.
func (l *Ledger) AllOrders() []domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.Order, 0, l.entries.Len())
	l.entries.Ascend(func(e ledgerEntry) bool {
		result = append(result, e.order.Clone())
		return true
	})
	return result
}

// Page returns one page of the history in insertion order along with the
// total number of orders. Pagination is 1-based.
func (l *Ledger) Page(page, limit int) ([]domain.Order, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := l.entries.Len()
	start := (page - 1) * limit
	if page < 1 || limit < 1 || start >= total {
		return []domain.Order{}, total
	}

	result := make([]domain.Order, 0, min(limit, total-start))
	skipped := 0
	l.entries.Ascend(func(e ledgerEntry) bool {
		if skipped < start {
			skipped++
			return true
		}
		result = append(result, e.order.Clone())
		return len(result) < limit
	})
	return result, total
}

// Count returns the number of orders in the history.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.entries.Len()
}

// ClearHistory removes every order. Sequence numbers keep increasing so
// later orders still sort after anything a caller saw before the reset.
func (l *Ledger) ClearHistory() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries.Clear(false)
}
