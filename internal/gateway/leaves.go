package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/store"
	"go-sales-agent/internal/utils"
)

// leaveKey identifies a record before and after the service assigns its id.
// Timestamps alone collide when two salesmen record in the same millisecond.
func leaveKey(l models.Leave) string {
	if l.Timestamp != "" {
		return l.SalesmanID + "|" + l.Timestamp
	}
	return l.ID.String()
}

// ListLeaves returns the leave records matching f.
func (g *Gateway) ListLeaves(ctx context.Context, f models.Filter) []models.Leave {
	return readThrough(ctx, g, store.Leaves, "/api/leaves", f, leaveKey)
}

// CreateLeave follows the same write-through rules as CreateSale.
func (g *Gateway) CreateLeave(ctx context.Context, l models.Leave) (WriteResult[models.Leave], error) {
	l.ID = ""
	l.Reason = strings.TrimSpace(l.Reason)
	if l.SalesmanID == "" {
		return WriteResult[models.Leave]{}, invalid("salesman ID is required")
	}
	if l.Reason == "" {
		return WriteResult[models.Leave]{}, invalid("a reason is required")
	}
	if l.Date == "" {
		l.Date = l.FromDate
	}
	if _, err := utils.ParseDay(l.Date); err != nil {
		return WriteResult[models.Leave]{}, invalid("invalid leave date %q", l.Date)
	}
	if from, to := l.Span(); to < from {
		return WriteResult[models.Leave]{}, invalid("leave ends before it starts")
	}
	if l.Status == "" {
		l.Status = models.LeavePending
	}
	if l.Timestamp == "" {
		l.Timestamp = utils.Timestamp(time.Now())
	}
	return writeThrough(ctx, g, store.Leaves, "/api/leaves", "leave", l, leaveKey(l), l.SalesmanID, leaveKey)
}

// UpdateLeaveStatus approves or rejects a leave.
func (g *Gateway) UpdateLeaveStatus(ctx context.Context, id string, status models.LeaveStatus) (models.Leave, error) {
	switch status {
	case models.LeavePending, models.LeaveApproved, models.LeaveRejected:
	default:
		return models.Leave{}, invalid("unknown leave status %q", status)
	}
	if id == "" {
		return models.Leave{}, invalid("leave id is required")
	}

	body := fmt.Appendf(nil, `{"status":%q}`, status)
	resp, err := g.send(ctx, http.MethodPatch, "/api/leaves/"+url.PathEscape(id), nil, body)
	if err != nil {
		return models.Leave{}, err
	}
	updated, echoed := decodeEcho[models.Leave](resp, "leave")

	var result models.Leave
	mErr := store.Mutate(ctx, g.store, store.Leaves, func(leaves []models.Leave) []models.Leave {
		for i := range leaves {
			if leaves[i].ID.String() != id {
				continue
			}
			if echoed {
				leaves[i] = updated
			} else {
				leaves[i].Status = status
			}
			result = leaves[i]
		}
		return leaves
	})
	if mErr != nil {
		return models.Leave{}, fmt.Errorf("update cached leave %s: %w", id, mErr)
	}
	if echoed {
		return updated, nil
	}
	if result.ID == "" {
		result = models.Leave{ID: models.RecordID(id), Status: status}
	}
	return result, nil
}

// DeleteLeave removes a leave by its server-assigned id.
func (g *Gateway) DeleteLeave(ctx context.Context, id string) error {
	if id == "" {
		return invalid("leave id is required")
	}
	if err := g.do(ctx, http.MethodDelete, "/api/leaves/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return err
	}
	_, err := store.RemoveWhere(ctx, g.store, store.Leaves, func(l models.Leave) bool { return l.ID.String() == id })
	return err
}
