package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"campuserp/internal/catalog"
)

// StudentAttendance handles GET /api/student/:studentId/attendance.
func (h *Handler) StudentAttendance(c *gin.Context) {
	studentID, ok := intParam(c, "studentId")
	if !ok {
		return
	}
	out, err := h.Catalog.StudentAttendance(c.Request.Context(), studentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}

// StudentSummary handles GET /api/student/:studentId/attendance/summary,
// served from the Redis cache when fresh.
func (h *Handler) StudentSummary(c *gin.Context) {
	studentID, ok := intParam(c, "studentId")
	if !ok {
		return
	}
	s, err := h.Summaries.Get(c.Request.Context(), studentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// StudentProfile handles GET /api/student/:studentId/profile.
func (h *Handler) StudentProfile(c *gin.Context) {
	id, ok := intParam(c, "studentId")
	if !ok {
		return
	}
	p, err := h.Catalog.StudentProfile(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateStudentProfile handles PUT /api/student/:studentId/profile. The body
// is multipart: text fields plus an optional photo uploaded to Cloudinary.
func (h *Handler) UpdateStudentProfile(c *gin.Context) {
	id, ok := intParam(c, "studentId")
	if !ok {
		return
	}

	update := catalog.ProfileUpdate{
		DOB:      c.PostForm("dob"),
		Mobile:   c.PostForm("mobile"),
		AltEmail: c.PostForm("alt_email"),
		Aadhar:   c.PostForm("aadhar"),
		Address:  c.PostForm("address"),
	}

	if fileHeader, err := c.FormFile("photo"); err == nil {
		if h.Uploader == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Photo uploads are not configured"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read photo"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read photo"})
			return
		}
		res, err := h.Uploader.UploadBytes(data, fileHeader.Filename)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"message": "Photo upload failed"})
			return
		}
		update.Photo = res.SecureURL
	}

	applied, affected, err := h.Catalog.UpdateStudentProfile(c.Request.Context(), id, update)
	if err != nil {
		fail(c, err)
		return
	}
	if applied == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}
