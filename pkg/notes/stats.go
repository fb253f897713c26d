package notes

import (
	"context"
	"time"
)

// Stats summarizes the stored notes for the popup's statistics view.
type Stats struct {
	Total         int            `json:"total"`
	ThisWeek      int            `json:"thisWeek"`
	WithReminders int            `json:"withReminders"`
	ByColor       map[string]int `json:"byColor"`
	ByTag         map[string]int `json:"byTag"`
}

// Stats computes note statistics: totals, notes created in the last seven
// days, pending reminder carriers, and per-color/per-tag histograms.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	oneWeekAgo := s.now().Add(-7 * 24 * time.Hour)
	stats := Stats{
		Total:   len(all),
		ByColor: make(map[string]int),
		ByTag:   make(map[string]int),
	}
	for _, note := range all {
		if !note.CreatedAt.Before(oneWeekAgo) {
			stats.ThisWeek++
		}
		if note.Reminder != nil {
			stats.WithReminders++
		}
		stats.ByColor[note.Color]++
		for _, tag := range note.Tags {
			stats.ByTag[tag]++
		}
	}
	return stats, nil
}
