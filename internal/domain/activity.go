package domain

import (
	"fmt"
	"math"
	"time"
)

type Activity struct {
	ID                string
	ProjectID         string
	Title             string `validate:"notblank"`
	Description       string
	Status            ActivityStatus
	Priority          Priority
	StartDate         *time.Time
	EndDate           *time.Time
	ResponsiblePerson string
	Items             []ActivityItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ActivityItem is a checklist entry under an activity.
type ActivityItem struct {
	ID          string
	ActivityID  string
	Title       string
	IsCompleted bool
	OrderIndex  int
	CompletedAt *time.Time
}

// CompletionPct is the checked ratio of items, rounded to a whole percent.
// Without items it is 100 for completed activities and 0 otherwise.
func (a *Activity) CompletionPct() int {
	if len(a.Items) == 0 {
		if a.Status == ActivityCompleted {
			return 100
		}
		return 0
	}
	done := 0
	for _, it := range a.Items {
		if it.IsCompleted {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(a.Items)) * 100))
}

// ValidateDates rejects an end date before the start date.
func (a *Activity) ValidateDates() error {
	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		return fmt.Errorf("end date %s is before start date %s",
			a.EndDate.Format("2006-01-02"), a.StartDate.Format("2006-01-02"))
	}
	return nil
}

// Toggle flips completion and stamps CompletedAt.
func (it *ActivityItem) Toggle(now time.Time) {
	it.IsCompleted = !it.IsCompleted
	if it.IsCompleted {
		it.CompletedAt = &now
	} else {
		it.CompletedAt = nil
	}
}
