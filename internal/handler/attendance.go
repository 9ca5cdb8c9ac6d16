package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campuserp/internal/attendance"
	"campuserp/internal/queue"
)

// FacultySessions handles GET /api/faculty/:facultyId/sessions?date=. The day
// of week is derived from the date; holidays return an empty session list with
// the reason attached.
func (h *Handler) FacultySessions(c *gin.Context) {
	facultyID, ok := intParam(c, "facultyId")
	if !ok {
		return
	}
	date := c.Query("date")
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or missing date"})
		return
	}

	holidays, err := h.Catalog.HolidaysAscending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	for _, hd := range holidays {
		if hd.Date == date {
			c.JSON(http.StatusOK, gin.H{"sessions": []any{}, "holiday": hd.Reason})
			return
		}
	}

	sessions, err := h.Catalog.FacultySessions(c.Request.Context(), facultyID, parsed.Format("Mon"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// AttendanceStatus handles GET /api/faculty/:facultyId/attendance-status.
func (h *Handler) AttendanceStatus(c *gin.Context) {
	facultyID, ok := intParam(c, "facultyId")
	if !ok {
		return
	}
	st, err := h.Attendance.Status(c.Request.Context(), facultyID,
		intQuery(c, "sessionId"), intQuery(c, "courseId"), c.Query("date"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// SessionStudents handles GET /api/faculty/:facultyId/students — the roster
// with each student's current mark for the class-date.
func (h *Handler) SessionStudents(c *gin.Context) {
	facultyID, ok := intParam(c, "facultyId")
	if !ok {
		return
	}
	sessionID, courseID, date := intQuery(c, "sessionId"), intQuery(c, "courseId"), c.Query("date")
	if sessionID == 0 || courseID == 0 || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing sessionId, courseId or date"})
		return
	}
	students, err := h.Catalog.SessionStudents(c.Request.Context(), facultyID, sessionID, courseID, date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

// GenerateQR handles GET /api/faculty/:facultyId/generate-qr. The payload is
// what the student app scans back; ts anchors the validity window and the
// nonce makes each code single-use client-side.
func (h *Handler) GenerateQR(c *gin.Context) {
	facultyID, ok := intParam(c, "facultyId")
	if !ok {
		return
	}
	sessionID, courseID, date := intQuery(c, "sessionId"), intQuery(c, "courseId"), c.Query("date")
	if sessionID == 0 || courseID == 0 || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing sessionId, courseId or date"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"qr": gin.H{
			"faculty_id": facultyID,
			"session_id": sessionID,
			"course_id":  courseID,
			"date":       date,
			"ts":         time.Now().UnixMilli(),
			"nonce":      uuid.NewString(),
		},
	})
}

type scanFaceRequest struct {
	StudentID    int    `json:"student_id"`
	ScannedPhoto string `json:"scanned_photo"`
}

// ScanFace handles POST /api/faculty/scan-face — the duplicate-face check.
func (h *Handler) ScanFace(c *gin.Context) {
	var req scanFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := h.Attendance.DetectProxy(c.Request.Context(), req.StudentID, req.ScannedPhoto); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Face verified"})
}

type attendanceRequest struct {
	FacultyID   int                 `json:"faculty_id"`
	SessionID   int                 `json:"session_id"`
	CourseID    int                 `json:"course_id"`
	Date        string              `json:"date"`
	Mode        string              `json:"mode"`
	Records     []attendance.Record `json:"records"`
	QRTimestamp int64               `json:"qr_ts"`
	Force       bool                `json:"force"`
}

// SubmitAttendance handles POST /api/faculty/attendance. On success an
// attendance_saved message is published so the worker refreshes summaries.
func (h *Handler) SubmitAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	res, err := h.Attendance.Submit(c.Request.Context(), attendance.Submission{
		FacultyID:   req.FacultyID,
		SessionID:   req.SessionID,
		CourseID:    req.CourseID,
		Date:        req.Date,
		Mode:        req.Mode,
		Records:     req.Records,
		QRTimestamp: req.QRTimestamp,
		Force:       req.Force,
	})
	if err != nil {
		fail(c, err)
		return
	}

	h.notifySaved(c.Request.Context(), req.Records, req.Date)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": res.Message, "saved_at": res.SavedAt})
}

// notifySaved publishes the summary-refresh message; the write already
// committed, so a publish failure is only logged.
func (h *Handler) notifySaved(ctx context.Context, records []attendance.Record, date string) {
	if h.Queue == nil {
		return
	}
	ids := make([]int, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.StudentID)
	}
	body, err := json.Marshal(queue.AttendanceSaved{StudentIDs: ids, Date: date})
	if err != nil {
		return
	}
	if err := h.Queue.Publish(ctx, queue.Message{Type: "attendance_saved", Body: body}); err != nil {
		log.Printf("attendance_saved publish failed: %v", err)
	}
}

// SectionSummary handles GET /api/dean/attendance/summary/:sectionId.
func (h *Handler) SectionSummary(c *gin.Context) {
	sectionID, ok := intParam(c, "sectionId")
	if !ok {
		return
	}
	out, err := h.Catalog.SectionSummary(c.Request.Context(), sectionID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// SectionAttendance handles GET /api/dean/attendance/:sectionId/:date.
func (h *Handler) SectionAttendance(c *gin.Context) {
	sectionID, ok := intParam(c, "sectionId")
	if !ok {
		return
	}
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date"})
		return
	}
	out, err := h.Catalog.SectionAttendance(c.Request.Context(), sectionID, date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// ModifyAttendance handles PUT /api/dean/attendance/:id — a single-record
// status change after finalization.
func (h *Handler) ModifyAttendance(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		(req.Status != attendance.StatusPresent && req.Status != attendance.StatusAbsent) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status must be Present or Absent"})
		return
	}
	affected, err := h.Catalog.UpdateAttendanceStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Attendance record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attendance updated"})
}
