package signature

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSignature_Identity(t *testing.T) {
	a := Signature{Search: "lap", Limit: 50, Offset: 0, Append: false}
	b := Signature{Search: "lap", Limit: 50, Offset: 0, Append: false}

	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, `items::struct:{Search:"lap",Limit:50,Offset:0,Append:false}`, a.String())

	variants := []Signature{
		{Search: "lap", Limit: 50, Offset: 50, Append: true},
		{Search: "lap", Limit: 50, Offset: 0, Append: true},
		{Search: "lapt", Limit: 50},
		{Search: "lap", Limit: 25},
		{Search: "", Limit: 50},
	}
	for _, v := range variants {
		assert.NotEqual(t, a.Hash(), v.Hash(), "variant %+v", v)
	}
}

func TestSignature_SearchWithSeparators(t *testing.T) {
	a := Signature{Search: "a-50-0", Limit: 50}
	b := Signature{Search: "a", Limit: 50}
	assert.NotEqual(t, a.String(), b.String())
}

func TestLedger_Recent(t *testing.T) {
	clock := &manualClock{now: time.Unix(1_700_000_000, 0)}
	ledger := NewLedger(2*time.Second, clock.Now)
	sig := Signature{Limit: 50}

	assert.False(t, ledger.Recent(sig, 2*time.Second))

	ledger.Record(sig)
	assert.True(t, ledger.Recent(sig, 2*time.Second))

	clock.Advance(499 * time.Millisecond)
	assert.True(t, ledger.Recent(sig, 500*time.Millisecond))

	clock.Advance(time.Millisecond)
	assert.False(t, ledger.Recent(sig, 500*time.Millisecond), "window is exclusive")
	assert.True(t, ledger.Recent(sig, 2*time.Second))

	clock.Advance(1500 * time.Millisecond)
	assert.False(t, ledger.Recent(sig, 2*time.Second))
}

func TestLedger_RecordRefreshesTimestamp(t *testing.T) {
	clock := &manualClock{now: time.Unix(1_700_000_000, 0)}
	ledger := NewLedger(2*time.Second, clock.Now)
	sig := Signature{Search: "desk", Limit: 50}

	ledger.Record(sig)
	clock.Advance(1900 * time.Millisecond)
	ledger.Record(sig)
	clock.Advance(1900 * time.Millisecond)

	assert.True(t, ledger.Recent(sig, 2*time.Second))
}

func TestLedger_Prunes(t *testing.T) {
	clock := &manualClock{now: time.Unix(1_700_000_000, 0)}
	ledger := NewLedger(2*time.Second, clock.Now)

	for i := 0; i < 10; i++ {
		ledger.Record(Signature{Limit: 50, Offset: i * 50, Append: true})
	}
	assert.Equal(t, 10, ledger.Len())

	clock.Advance(3 * time.Second)
	ledger.Record(Signature{Limit: 50})
	assert.Equal(t, 11, ledger.Len(), "small ledgers are not swept on record")

	assert.False(t, ledger.Recent(Signature{Limit: 50, Offset: 0, Append: true}, 2*time.Second))
	assert.Equal(t, 10, ledger.Len(), "expired entry dropped when looked up")

	for i := 0; i < pruneThreshold; i++ {
		ledger.Record(Signature{Search: fmt.Sprintf("fresh %d", i), Limit: 50})
	}
	assert.Equal(t, pruneThreshold+1, ledger.Len(), "expired entries swept past the threshold")
}

func TestLedger_Forget(t *testing.T) {
	clock := &manualClock{now: time.Unix(1_700_000_000, 0)}
	ledger := NewLedger(2*time.Second, clock.Now)
	a := Signature{Search: "a", Limit: 50}
	ab := Signature{Search: "ab", Limit: 50}

	ledger.Record(a)
	ledger.Record(ab)
	ledger.Forget(a)

	assert.False(t, ledger.Recent(a, 2*time.Second))
	assert.True(t, ledger.Recent(ab, 2*time.Second))
	assert.Equal(t, 1, ledger.Len())
}
