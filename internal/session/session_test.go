package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

func TestNewDefaults(t *testing.T) {
	s := New(domain.FrequencySort)
	snap := s.Snapshot()

	assert.Equal(t, domain.ModeNormal, snap.Mode)
	assert.Equal(t, domain.AllCategories, snap.Category)
	assert.Equal(t, domain.FrequencySort, snap.Sort)
}

func TestFire(t *testing.T) {
	s := New(domain.AlphaSort)

	assert.Equal(t, domain.ModeEdit, s.Fire(domain.EventEnterEdit))
	assert.Equal(t, domain.ModeDelete, s.Fire(domain.EventEnterDelete))
	assert.Equal(t, domain.ModeNormal, s.Fire(domain.EventDone))
	assert.Equal(t, domain.ModeNormal, s.Mode())
}

func TestCategory(t *testing.T) {
	s := New(domain.AlphaSort)

	s.SetCategory("Work")
	assert.Equal(t, "Work", s.Category())

	s.ReconcileCategory([]string{"Fun", "Work"})
	assert.Equal(t, "Work", s.Category())

	s.ReconcileCategory([]string{"Fun"})
	assert.Equal(t, domain.AllCategories, s.Category())

	s.SetCategory("")
	assert.Equal(t, domain.AllCategories, s.Category())
}

func TestToggleSort(t *testing.T) {
	s := New(domain.AlphaSort)
	assert.Equal(t, domain.FrequencySort, s.ToggleSort())
	assert.Equal(t, domain.AlphaSort, s.ToggleSort())

	s.SetSort(domain.FrequencySort)
	assert.Equal(t, domain.FrequencySort, s.Sort())
}

func TestConcurrentAccess(t *testing.T) {
	s := New(domain.AlphaSort)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.Fire(domain.EventEnterEdit)
				s.ToggleSort()
			} else {
				s.Fire(domain.EventDone)
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	mode := s.Mode()
	assert.True(t, mode == domain.ModeEdit || mode == domain.ModeNormal)
}
