package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type itActionRequest struct {
	StudentID int `json:"student_id"`
}

// DeactivatedStudents handles GET /api/it/students/deactivated.
func (h *Handler) DeactivatedStudents(c *gin.Context) {
	out, err := h.Catalog.DeactivatedStudents(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": out})
}

// ReactivateStudent handles POST /api/it/students/reactivate.
func (h *Handler) ReactivateStudent(c *gin.Context) {
	var req itActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StudentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing student_id"})
		return
	}
	affected, err := h.Catalog.ReactivateStudent(c.Request.Context(), req.StudentID)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student reactivated"})
}

// DeviceIssues handles GET /api/it/students/issues.
func (h *Handler) DeviceIssues(c *gin.Context) {
	out, err := h.Catalog.DeviceIssues(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": out})
}

// ResetDevice handles POST /api/it/students/reset-device.
func (h *Handler) ResetDevice(c *gin.Context) {
	var req itActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StudentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing student_id"})
		return
	}
	affected, err := h.Catalog.ResetDevice(c.Request.Context(), req.StudentID)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device reset"})
}
