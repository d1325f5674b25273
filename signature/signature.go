// Package signature identifies list requests and remembers when they were last seen.
package signature

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-catalog-cache/cache"
)

var keys = cache.NewDefaultKeySerializer()

// Signature is the identity of one list request. Two requests with equal
// signatures are interchangeable.
type Signature struct {
	Search string
	Limit  int
	Offset int
	Append bool
}

// String returns the canonical key for s.
func (s Signature) String() string {
	return keys.SerializeKey("items", s)
}

// Hash returns a 64-bit digest of String.
func (s Signature) Hash() uint64 {
	return xxhash.Sum64String(s.String())
}

// pruneThreshold is the ledger size above which Record sweeps expired entries.
const pruneThreshold = 64

// Ledger records the last time each signature was issued or completed.
// Expired entries are dropped when Recent finds them or, once the ledger grows past
// pruneThreshold, when a new one is recorded.
type Ledger struct {
	seen      *xsync.MapOf[uint64, time.Time]
	retention time.Duration
	now       func() time.Time
}

// NewLedger returns a ledger keeping entries for retention. A nil now uses time.Now.
func NewLedger(retention time.Duration, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		seen:      xsync.NewMapOf[uint64, time.Time](),
		retention: retention,
		now:       now,
	}
}

// Record marks sig as seen now.
func (l *Ledger) Record(sig Signature) {
	now := l.now()
	l.seen.Store(sig.Hash(), now)
	if l.seen.Size() > pruneThreshold {
		l.prune(now)
	}
}

// Forget drops sig, so it no longer counts as recent.
func (l *Ledger) Forget(sig Signature) {
	l.seen.Delete(sig.Hash())
}

// Recent reports whether sig was recorded less than window ago.
func (l *Ledger) Recent(sig Signature, window time.Duration) bool {
	key := sig.Hash()
	at, ok := l.seen.Load(key)
	if !ok {
		return false
	}
	age := l.now().Sub(at)
	if age >= l.retention {
		l.seen.Delete(key)
	}
	return age < window
}

// Len returns the number of retained entries.
func (l *Ledger) Len() int {
	return l.seen.Size()
}

func (l *Ledger) prune(now time.Time) {
	l.seen.Range(func(key uint64, at time.Time) bool {
		if now.Sub(at) >= l.retention {
			l.seen.Delete(key)
		}
		return true
	})
}
