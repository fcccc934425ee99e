package handlers

import (
	"net/http"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/utils"

	"github.com/gin-gonic/gin"
)

type LeaveRequest struct {
	Date       string `json:"date"`
	FromDate   string `json:"fromDate"`
	ToDate     string `json:"toDate"`
	Reason     string `json:"reason" binding:"required"`
	IsCritical bool   `json:"isCritical"`
}

type LeaveStatusRequest struct {
	Status models.LeaveStatus `json:"status" binding:"required"`
}

// --- GET: /api/leaves?salesmanId=&date=&month= ---
func (h *Handler) GetLeaves(c *gin.Context) {
	var f models.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}
	if u := sessionUser(c); u.IsSalesman() {
		f.SalesmanID = u.SalesmanID
	}
	c.JSON(http.StatusOK, h.gw.ListLeaves(c.Request.Context(), f))
}

// --- POST: /api/leaves ---
func (h *Handler) ApplyLeave(c *gin.Context) {
	var req LeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A reason is required"})
		return
	}
	u := sessionUser(c)
	now := h.now()

	leave := models.Leave{
		SalesmanID:   u.SalesmanID,
		SalesmanName: u.Name,
		Date:         req.Date,
		Reason:       req.Reason,
		Timestamp:    utils.Timestamp(now),
		IsCritical:   req.IsCritical,
		FromDate:     req.FromDate,
		ToDate:       req.ToDate,
	}
	if leave.Date == "" && leave.FromDate == "" {
		leave.Date = utils.Today(now)
	}

	res, err := h.gw.CreateLeave(c.Request.Context(), leave)
	if res.Offline {
		c.JSON(http.StatusAccepted, gin.H{"success": true, "offline": true, "leave": res.Record, "pendingRef": res.PendingRef})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "offline": false, "leave": res.Record})
}

// --- PATCH: /api/leaves/:id ---
func (h *Handler) UpdateLeaveStatus(c *gin.Context) {
	var req LeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}
	leave, err := h.gw.UpdateLeaveStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, leave)
}

// --- DELETE: /api/leaves/:id ---
func (h *Handler) DeleteLeave(c *gin.Context) {
	if err := h.gw.DeleteLeave(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
