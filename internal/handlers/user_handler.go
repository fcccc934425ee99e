package handlers

import (
	"net/http"

	"go-sales-agent/internal/models"

	"github.com/gin-gonic/gin"
)

type SalesmanRequest struct {
	Name       string `json:"name" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	SalesmanID string `json:"salesmanId"`
}

type PasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// --- GET: /api/users ---
func (h *Handler) ListSalesmen(c *gin.Context) {
	salesmen := h.gw.ListSalesmen(c.Request.Context())
	out := make([]models.User, 0, len(salesmen))
	for _, u := range salesmen {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}

// --- POST: /api/users ---
func (h *Handler) CreateSalesman(c *gin.Context) {
	var req SalesmanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, username and password are required"})
		return
	}
	created, err := h.gw.CreateUser(c.Request.Context(), models.User{
		Name:       req.Name,
		Username:   req.Username,
		Password:   req.Password,
		Role:       models.RoleSalesman,
		SalesmanID: req.SalesmanID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created.Public())
}

// --- DELETE: /api/users/:salesmanId ---
// The salesman's sales and leaves are removed from the local store even when
// the server cannot be reached.
func (h *Handler) DeleteSalesman(c *gin.Context) {
	if err := h.gw.DeleteUser(c.Request.Context(), c.Param("salesmanId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- PUT: /api/users/:salesmanId/password ---
func (h *Handler) ResetPassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}
	if err := h.gw.ResetPassword(c.Request.Context(), c.Param("salesmanId"), req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
