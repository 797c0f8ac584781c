package service

import (
	"math/rand"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"sort"
	"sync"
	"time"
)

// Sampler picks n distinct question ids out of pool. pool is in display
// order and the returned ids keep that order.
type Sampler interface {
	Sample(pool []model.Question, n int) []uint
}

func NewSampler(kind string) Sampler {
	if kind == util.SamplingFirst {
		return FirstSampler{}
	}
	return NewRandomSampler(time.Now().UnixNano())
}

type RandomSampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{rnd: rand.New(rand.NewSource(seed))}
}

func (s *RandomSampler) Sample(pool []model.Question, n int) []uint {
	n = clampSample(len(pool), n)

	s.mu.Lock()
	idx := s.rnd.Perm(len(pool))[:n]
	s.mu.Unlock()

	sort.Ints(idx)
	ids := make([]uint, 0, n)
	for _, i := range idx {
		ids = append(ids, pool[i].ID)
	}
	return ids
}

// FirstSampler takes the first n questions by display order.
type FirstSampler struct{}

func (FirstSampler) Sample(pool []model.Question, n int) []uint {
	n = clampSample(len(pool), n)
	ids := make([]uint, 0, n)
	for _, q := range pool[:n] {
		ids = append(ids, q.ID)
	}
	return ids
}

func clampSample(size, n int) int {
	if n < 0 {
		return 0
	}
	if n > size {
		return size
	}
	return n
}
