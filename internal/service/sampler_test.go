package service

import (
	"quiz_portal_backend/internal/model"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pool(n int) []model.Question {
	qs := make([]model.Question, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, question(uint(100+i), 1, i))
	}
	return qs
}

func TestRandomSampler(t *testing.T) {
	s := NewRandomSampler(42)
	p := pool(10)

	for i := 0; i < 50; i++ {
		ids := s.Sample(p, 3)
		assert.Len(t, ids, 3)

		seen := map[uint]bool{}
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
			assert.True(t, id > 100 && id <= 110)
		}
		assert.True(t, sort.SliceIsSorted(ids, func(a, b int) bool { return ids[a] < ids[b] }),
			"ids keep display order: %v", ids)
	}
}

func TestFirstSampler(t *testing.T) {
	assert.Equal(t, []uint{101, 102, 103}, FirstSampler{}.Sample(pool(10), 3))
}

func TestSamplerClamps(t *testing.T) {
	for _, s := range []Sampler{NewRandomSampler(1), FirstSampler{}} {
		assert.Len(t, s.Sample(pool(2), 5), 2)
		assert.Empty(t, s.Sample(pool(2), -1))
		assert.Empty(t, s.Sample(nil, 3))
	}
}

func TestNewSampler(t *testing.T) {
	assert.IsType(t, FirstSampler{}, NewSampler("first"))
	assert.IsType(t, &RandomSampler{}, NewSampler("random"))
}
