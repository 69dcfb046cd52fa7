package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruleforty/internal/company"
)

func submit(label string, margin, growth, mc *float64, clicks int) SubmitEvent {
	return SubmitEvent{
		Draft:  company.Draft{Label: label, Margin: margin, Growth: growth, MarketCap: mc},
		Clicks: clicks,
	}
}

func TestAppendValid(t *testing.T) {
	st := NewState(company.DefaultSeed(), 600)
	recs, ok := st.Append(submit("TEST", company.Float(50), company.Float(10), company.Float(100), 1))
	require.True(t, ok)
	require.Len(t, recs, 17)
	last := recs[16]
	assert.Equal(t, "TEST", last.Label)
	assert.Equal(t, 50.0, last.Margin)
	assert.Equal(t, 10.0, last.Growth)
	assert.Equal(t, 100.0, *last.MarketCap)
	assert.Equal(t, 17, st.Len())
}

func TestAppendInvalidLeavesListUnchanged(t *testing.T) {
	events := []SubmitEvent{
		submit("", company.Float(1), company.Float(1), nil, 1),
		submit("X", nil, company.Float(1), nil, 1),
		submit("X", company.Float(1), nil, nil, 1),
		submit("X", company.Float(1), company.Float(1), company.Float(-5), 1),
		submit("X", company.Float(1), company.Float(1), nil, 0),
	}
	st := NewState(company.DefaultSeed(), 600)
	for _, ev := range events {
		recs, ok := st.Append(ev)
		assert.False(t, ok)
		assert.Len(t, recs, 16)
	}
	_, err := st.Submit(events[4])
	assert.ErrorIs(t, err, ErrNoClick)
	_, err = st.Submit(events[0])
	assert.ErrorIs(t, err, company.ErrEmptyLabel)
}

func TestRecordsIsCopy(t *testing.T) {
	st := NewState(company.DefaultSeed(), 600)
	recs := st.Records()
	recs[0].Label = "mutated"
	*recs[0].MarketCap = 1
	again := st.Records()
	assert.Equal(t, "Visa (V)", again[0].Label)
	assert.Equal(t, 570.0, *again[0].MarketCap)
}

func TestChapterAndHeight(t *testing.T) {
	st := NewState(nil, 600)
	assert.Equal(t, 0, st.Chapter())
	assert.Equal(t, 2, st.MoveChapter(func(i int) int { return i + 2 }))
	assert.Equal(t, 600, st.Height())
	st.SetHeight(300)
	assert.Equal(t, 300, st.Height())
}

func TestConcurrentAppendsAllLand(t *testing.T) {
	st := NewState(company.DefaultSeed(), 600)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Append(submit("C", company.Float(1), company.Float(2), nil, 1))
		}()
	}
	wg.Wait()
	assert.Equal(t, 66, st.Len())
}

func TestManagerIsolatesSessions(t *testing.T) {
	m := NewManager(Options{MaxSessions: 10, IdleTTL: time.Minute, Seed: company.DefaultSeed(), DefaultHeight: 600})
	idA, a := m.Create()
	idB, b := m.Create()
	require.NotEqual(t, idA, idB)

	_, ok := a.Append(submit("ONLY-A", company.Float(5), company.Float(5), nil, 1))
	require.True(t, ok)
	assert.Equal(t, 17, a.Len())
	assert.Equal(t, 16, b.Len())

	got, ok := m.Get(idA)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 2, m.Len())
}

func TestManagerResolve(t *testing.T) {
	m := NewManager(Options{MaxSessions: 10, IdleTTL: time.Minute, Seed: company.DefaultSeed(), DefaultHeight: 600})

	id, st, created := m.Resolve("unknown")
	require.True(t, created)
	assert.NotEqual(t, "unknown", id)
	assert.Equal(t, 600, st.Height())

	id2, st2, created := m.Resolve(id)
	assert.False(t, created)
	assert.Equal(t, id, id2)
	assert.Same(t, st, st2)

	_, _, created = m.Resolve("")
	assert.True(t, created)
}

func TestManagerEvictsOldest(t *testing.T) {
	var evicted []string
	m := NewManager(Options{
		MaxSessions: 2,
		IdleTTL:     time.Minute,
		Seed:        company.DefaultSeed(),
		OnEvict:     func(id string) { evicted = append(evicted, id) },
	})
	first, _ := m.Create()
	m.Create()
	m.Create()

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(first)
	assert.False(t, ok)
	assert.Equal(t, []string{first}, evicted)
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	m := NewManager(Options{MaxSessions: 5, IdleTTL: 20 * time.Millisecond, Seed: company.DefaultSeed()})
	id, _ := m.Create()
	assert.Eventually(t, func() bool {
		_, ok := m.Get(id)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
