package reports

import (
	"strings"

	"go-sales-agent/internal/models"
)

// LeaveSummary is the leave statistics block of the admin dashboard.
type LeaveSummary struct {
	OnLeaveToday    []models.Leave `json:"onLeaveToday"`
	CriticalOnLeave []models.Leave `json:"criticalOnLeave"`
	MonthlySummary  map[string]int `json:"monthlySummary"`
}

// LeaveStats reports who is on approved leave on day, which of those are
// critical, and how many leaves start in each month.
func LeaveStats(leaves []models.Leave, day string) LeaveSummary {
	stats := LeaveSummary{
		OnLeaveToday:    []models.Leave{},
		CriticalOnLeave: []models.Leave{},
		MonthlySummary:  map[string]int{},
	}
	for _, l := range leaves {
		from, to := l.Span()
		if l.Status == models.LeaveApproved && from <= day && day <= to {
			stats.OnLeaveToday = append(stats.OnLeaveToday, l)
			if l.IsCritical {
				stats.CriticalOnLeave = append(stats.CriticalOnLeave, l)
			}
		}
		stats.MonthlySummary[models.MonthOf(from)]++
	}
	return stats
}

func FilterLeavesByDay(leaves []models.Leave, day string) []models.Leave {
	out := make([]models.Leave, 0)
	for _, l := range leaves {
		if l.Date == day {
			out = append(out, l)
		}
	}
	return out
}

func FilterLeavesByMonth(leaves []models.Leave, month string) []models.Leave {
	out := make([]models.Leave, 0)
	for _, l := range leaves {
		if strings.HasPrefix(l.Date, month) {
			out = append(out, l)
		}
	}
	return out
}
