package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campuserp/internal/timetable"
)

type timetableRequest struct {
	SectionID  int    `json:"section_id"`
	CourseID   int    `json:"course_id"`
	FacultyID  int    `json:"faculty_id"`
	TimeslotID int    `json:"timeslot_id"`
	Room       string `json:"room"`
}

// ListTimeslots handles GET /timeslots.
func (h *Handler) ListTimeslots(c *gin.Context) {
	out, err := h.Catalog.ListTimeslots(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// SectionTimetable handles GET /timetable/:sectionId, returning the joined
// rows plus the holiday calendar so clients can grey out blocked dates.
func (h *Handler) SectionTimetable(c *gin.Context) {
	sectionID, ok := intParam(c, "sectionId")
	if !ok {
		return
	}
	rows, err := h.Catalog.SectionTimetable(c.Request.Context(), sectionID)
	if err != nil {
		fail(c, err)
		return
	}
	holidays, err := h.Catalog.HolidaysAscending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timetable": rows, "holidays": holidays})
}

// FacultyTimetable handles GET /api/faculty/timetable/:facultyId.
func (h *Handler) FacultyTimetable(c *gin.Context) {
	facultyID, ok := intParam(c, "facultyId")
	if !ok {
		return
	}
	rows, err := h.Catalog.FacultyTimetable(c.Request.Context(), facultyID)
	if err != nil {
		fail(c, err)
		return
	}
	holidays, err := h.Catalog.HolidaysAscending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timetable": rows, "holidays": holidays})
}

// ScheduleEntry handles POST /timetable.
func (h *Handler) ScheduleEntry(c *gin.Context) {
	var req timetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	id, err := h.Timetable.Schedule(c.Request.Context(), timetable.Input{
		SectionID:  req.SectionID,
		CourseID:   req.CourseID,
		FacultyID:  req.FacultyID,
		TimeslotID: req.TimeslotID,
		Room:       req.Room,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Timetable entry created"})
}

// RescheduleEntry handles PUT /timetable/:id.
func (h *Handler) RescheduleEntry(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req timetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := h.Timetable.Reschedule(c.Request.Context(), id, timetable.Input{
		CourseID:   req.CourseID,
		FacultyID:  req.FacultyID,
		TimeslotID: req.TimeslotID,
		Room:       req.Room,
	}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Timetable entry updated"})
}

// DeleteEntry handles DELETE /timetable/:id.
func (h *Handler) DeleteEntry(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.Timetable.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Timetable entry deleted"})
}
