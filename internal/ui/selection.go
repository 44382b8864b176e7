package ui

import (
	"github.com/babarot/rim/internal/core/types"
	"github.com/samber/lo"
)

// selection keeps the entries marked with tab in the order they were marked
type selection struct {
	ids []int64
}

func (s *selection) contains(id int64) bool {
	return lo.Contains(s.ids, id)
}

func (s *selection) toggle(id int64) {
	if s.contains(id) {
		s.remove(id)
		return
	}
	s.ids = append(s.ids, id)
}

func (s *selection) remove(id int64) {
	s.ids = lo.Without(s.ids, id)
}

func (s *selection) reset() {
	s.ids = nil
}

func (s *selection) len() int {
	return len(s.ids)
}

// entries resolves the selected ids against items, keeping selection order
func (s *selection) entries(items []Item) []types.TrashEntry {
	byID := lo.SliceToMap(items, func(i Item) (int64, types.TrashEntry) {
		return i.entry.ID, i.entry
	})
	return lo.FilterMap(s.ids, func(id int64, _ int) (types.TrashEntry, bool) {
		e, ok := byID[id]
		return e, ok
	})
}
