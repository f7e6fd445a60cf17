package forecast

import (
	"time"

	"github.com/warungops/warungops/internal/models"
)

// Calendar answers "is this date a recognized holiday". Entries come from
// config; recurring dates are matched by month and day, pinned entries by
// the full date.
type Calendar struct {
	recurring map[string]string // "01-02" -> name
	pinned    map[string]string // "2006-01-02" -> name
}

func NewCalendar(entries []models.Holiday) *Calendar {
	if len(entries) == 0 {
		entries = models.DefaultHolidays
	}
	c := &Calendar{
		recurring: make(map[string]string),
		pinned:    make(map[string]string),
	}
	for _, entry := range entries {
		switch len(entry.Date) {
		case len("01-02"):
			c.recurring[entry.Date] = entry.Name
		case len("2006-01-02"):
			c.pinned[entry.Date] = entry.Name
		}
	}
	return c
}

func (c *Calendar) Lookup(date time.Time) (string, bool) {
	if name, ok := c.pinned[date.Format("2006-01-02")]; ok {
		return name, true
	}
	name, ok := c.recurring[date.Format("01-02")]
	return name, ok
}
