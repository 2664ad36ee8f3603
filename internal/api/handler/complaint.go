package handler

import (
	"net/http"

	"speakup/backend/internal/models"
	"speakup/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type submitRequest struct {
	Title    string `json:"title" binding:"required"`
	Category string `json:"category" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// SubmitComplaint files a new complaint for the authenticated submitter.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, category and content are required"})
		return
	}

	complaint, err := h.Intake.Submit(c.GetString("user_id"), req.Title, req.Category, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, complaint)
}

// ListOwnComplaints returns the caller's complaints via the anonymous map.
func (h *Handler) ListOwnComplaints(c *gin.Context) {
	complaints, err := h.Intake.ListOwn(c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// ListComplaints is the handler/auditor view; no identity is exposed.
func (h *Handler) ListComplaints(c *gin.Context) {
	role := c.GetString("role")
	if role != models.RoleHandler && role != models.RoleAuditor {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	filter := storage.ComplaintFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}
	complaints, err := h.Intake.ListAll(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus applies a lifecycle transition as the acting handler.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	complaint, err := h.Intake.UpdateStatus(c.Param("id"), req.Status, c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

type feedbackRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// SubmitFeedback records the submitter's rating of a resolved complaint.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}

	feedback, err := h.Intake.SubmitFeedback(c.GetString("user_id"), c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

// RevealIdentity resolves a complaint's submitter for an auditor. Every
// successful call leaves an audit record.
func (h *Handler) RevealIdentity(c *gin.Context) {
	submitterID, err := h.Intake.RevealIdentity(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint_id": c.Param("id"), "submitter_id": submitterID})
}

// ValidateComplaint marks a complaint as genuine (auditor only).
func (h *Handler) ValidateComplaint(c *gin.Context) {
	if err := h.Intake.ValidateComplaint(c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"validated": true})
}

// DismissComplaint marks a complaint as false (auditor only).
func (h *Handler) DismissComplaint(c *gin.Context) {
	if err := h.Intake.DismissComplaint(c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": true})
}

// GetTrustHistory returns the caller's recent trust mutations.
func (h *Handler) GetTrustHistory(c *gin.Context) {
	history, err := h.Intake.GetTrustHistory(c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// ListDepartments returns the routing reference data.
func (h *Handler) ListDepartments(c *gin.Context) {
	departments, err := h.Storage.ListDepartments()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}
