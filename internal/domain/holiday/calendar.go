package holiday

import (
	"fmt"
	"time"
)

// Calendar answers holiday and weekend questions for instants in a fixed
// deployment time zone. Fridays are always holidays.
type Calendar struct {
	loc       *time.Location
	exact     map[string]*Holiday
	recurring map[string]*Holiday
}

func NewCalendar(holidays []*Holiday, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	c := &Calendar{
		loc:       loc,
		exact:     make(map[string]*Holiday),
		recurring: make(map[string]*Holiday),
	}
	for _, h := range holidays {
		if h == nil || !h.IsActive {
			continue
		}
		// stored dates are calendar dates, so their own components are used as-is
		y, m, d := h.Date.Date()
		if h.IsRecurring {
			c.recurring[monthDayKey(m, d)] = h
			continue
		}
		c.exact[dateKey(y, m, d)] = h
	}
	return c
}

func (c *Calendar) Location() *time.Location {
	if c == nil || c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// IsWeekend reports whether t falls on a Friday in the calendar's zone.
func (c *Calendar) IsWeekend(t time.Time) bool {
	return t.In(c.Location()).Weekday() == time.Friday
}

func (c *Calendar) IsHoliday(t time.Time) bool {
	if c.IsWeekend(t) {
		return true
	}
	_, ok := c.Match(t)
	return ok
}

// Match returns the stored holiday row covering t's calendar date, if any.
func (c *Calendar) Match(t time.Time) (*Holiday, bool) {
	if c == nil {
		return nil, false
	}
	y, m, d := t.In(c.Location()).Date()
	if h, ok := c.exact[dateKey(y, m, d)]; ok {
		return h, true
	}
	if h, ok := c.recurring[monthDayKey(m, d)]; ok {
		return h, true
	}
	return nil, false
}

type DayInfo struct {
	Date      string   `json:"date"`
	IsHoliday bool     `json:"isHoliday"`
	IsWeekend bool     `json:"isWeekend"`
	Holiday   *Holiday `json:"holiday,omitempty"`
}

func (c *Calendar) Describe(t time.Time) DayInfo {
	local := t.In(c.Location())
	info := DayInfo{
		Date:      local.Format("2006-01-02"),
		IsWeekend: c.IsWeekend(t),
	}
	if h, ok := c.Match(t); ok {
		info.Holiday = h
	}
	info.IsHoliday = info.IsWeekend || info.Holiday != nil
	return info
}

func dateKey(y int, m time.Month, d int) string {
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func monthDayKey(m time.Month, d int) string {
	return fmt.Sprintf("%02d-%02d", m, d)
}
