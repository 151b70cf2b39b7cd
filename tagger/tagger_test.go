package tagger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) target(name string) Target {
	return TargetFuncs{
		OnConfirm: func() { r.add("confirm " + name) },
		OnReject:  func() { r.add("reject " + name) },
	}
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func TestGetKeyStartsAtOne(t *testing.T) {
	tg := New()
	assert.Equal(t, uint64(1), tg.GetKey())
	assert.Equal(t, uint64(2), tg.GetKey())
	assert.Equal(t, uint64(3), tg.GetKey())
}

func TestCumulativeAck(t *testing.T) {
	tg := New()
	rec := &recorder{}
	for _, name := range []string{"1", "2", "3", "4"} {
		tg.Deposit(tg.GetKey(), rec.target(name))
	}

	tg.Ack(3, true)
	assert.Equal(t, []string{"confirm 1", "confirm 2", "confirm 3"}, rec.take())
	assert.Equal(t, []uint64{4}, tg.Tags())

	tg.Ack(4, false)
	assert.Equal(t, []string{"confirm 4"}, rec.take())
	assert.Equal(t, 0, tg.Pending())
}

func TestAckUnknownTagIsNoop(t *testing.T) {
	tg := New()
	rec := &recorder{}
	tg.Deposit(1, rec.target("1"))

	tg.Ack(5, false)
	tg.Nack(5, false)
	assert.Empty(t, rec.take())
	assert.Equal(t, 1, tg.Pending())

	// settled entries are never resolved twice
	tg.Ack(1, false)
	tg.Ack(1, false)
	tg.Nack(1, true)
	assert.Equal(t, []string{"confirm 1"}, rec.take())
}

func TestNackMultiple(t *testing.T) {
	tg := New()
	rec := &recorder{}
	tg.Deposit(1, rec.target("1"))
	tg.Deposit(2, rec.target("2"))
	tg.Deposit(3, rec.target("3"))

	tg.Nack(2, true)
	assert.Equal(t, []string{"reject 1", "reject 2"}, rec.take())
	assert.Equal(t, []uint64{3}, tg.Tags())
}

func TestTagZero(t *testing.T) {
	tg := New()
	rec := &recorder{}
	tg.Deposit(7, rec.target("7"))
	tg.Deposit(9, rec.target("9"))

	tg.Ack(0, true)
	assert.Equal(t, []string{"confirm 7", "confirm 9"}, rec.take())

	tg.Deposit(10, rec.target("10"))
	tg.Deposit(11, rec.target("11"))
	tg.Ack(0, false)
	tg.Nack(0, false)
	assert.Empty(t, rec.take(), "tag 0 without multiple names no entry")
	assert.Equal(t, []uint64{10, 11}, tg.Tags())
}

func TestOutOfOrderDeposit(t *testing.T) {
	tg := New()
	rec := &recorder{}
	for _, tag := range []uint64{5, 1, 3, 9, 2, 7} {
		tg.Deposit(tag, rec.target(""))
	}
	assert.Equal(t, []uint64{1, 2, 3, 5, 7, 9}, tg.Tags())

	tg.Ack(4, true)
	assert.Equal(t, []uint64{5, 7, 9}, tg.Tags())

	tg.Ack(7, false)
	assert.Equal(t, []uint64{5, 9}, tg.Tags())
}

func TestDepositReplacesExistingTag(t *testing.T) {
	tg := New()
	rec := &recorder{}
	tg.Deposit(1, rec.target("old"))
	tg.Deposit(1, rec.target("new"))
	assert.Equal(t, 1, tg.Pending())

	assert.Equal(t, []string{"reject old"}, rec.take())

	tg.Ack(1, false)
	assert.Equal(t, []string{"confirm new"}, rec.take())
}

func TestRejectAll(t *testing.T) {
	tg := New()
	rec := &recorder{}
	tg.Deposit(1, rec.target("1"))
	tg.Deposit(2, rec.target("2"))

	tg.RejectAll()
	assert.Equal(t, []string{"reject 1", "reject 2"}, rec.take())
	assert.Equal(t, 0, tg.Pending())
}

func TestResolutionRunsOutsideLock(t *testing.T) {
	tg := New()
	done := make(chan struct{})
	tg.Deposit(1, TargetFuncs{OnConfirm: func() {
		// re-entering the tagger from a target must not deadlock
		tg.Deposit(tg.GetKey(), TargetFuncs{})
		close(done)
	}})
	tg.Ack(1, false)
	<-done
	assert.Equal(t, 1, tg.Pending())
}

func TestPendingObserver(t *testing.T) {
	var seen []int
	tg := New(WithPendingObserver(func(n int) { seen = append(seen, n) }))
	tg.Deposit(1, TargetFuncs{})
	tg.Deposit(2, TargetFuncs{})
	tg.Ack(2, true)
	tg.Ack(3, true)
	assert.Equal(t, []int{1, 2, 0}, seen)
}

func TestConcurrentDepositAndAck(t *testing.T) {
	tg := New()
	var confirmed sync.WaitGroup
	const n = 1000
	confirmed.Add(n)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n/4; i++ {
				tg.Deposit(tg.GetKey(), TargetFuncs{OnConfirm: confirmed.Done})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, n, tg.Pending())

	tags := tg.Tags()
	for i := 1; i < len(tags); i++ {
		require.Less(t, tags[i-1], tags[i])
	}

	tg.Ack(uint64(n/2), true)
	tg.Ack(0, true)
	confirmed.Wait()
	assert.Equal(t, 0, tg.Pending())
}
