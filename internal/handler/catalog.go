package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campuserp/internal/store"
)

type departmentRequest struct {
	ProgramID int    `json:"program_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

// ListDepartments handles GET /departments.
func (h *Handler) ListDepartments(c *gin.Context) {
	out, err := h.Catalog.ListDepartments(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateDepartment handles POST /departments.
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProgramID == 0 || req.Name == "" || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	id, err := h.Catalog.CreateDepartment(c.Request.Context(), req.ProgramID, req.Name, req.Code)
	if err != nil {
		if store.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Department already exists"})
			return
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Department created"})
}

// UpdateDepartment handles PUT /departments/:id.
func (h *Handler) UpdateDepartment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProgramID == 0 || req.Name == "" || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	affected, err := h.Catalog.UpdateDepartment(c.Request.Context(), id, req.ProgramID, req.Name, req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Department not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Department updated"})
}

// DeleteDepartment handles DELETE /departments/:id.
func (h *Handler) DeleteDepartment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	affected, err := h.Catalog.DeleteDepartment(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Department not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Department deleted"})
}

// ListPrograms handles GET /programs.
func (h *Handler) ListPrograms(c *gin.Context) {
	out, err := h.Catalog.ListPrograms(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ProgramDepartments handles GET /programs/:id/departments.
func (h *Handler) ProgramDepartments(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	out, err := h.Catalog.ProgramDepartments(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListBatches handles GET /batches.
func (h *Handler) ListBatches(c *gin.Context) {
	out, err := h.Catalog.ListBatches(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type sectionRequest struct {
	DepartmentID int    `json:"department_id"`
	BatchID      int    `json:"batch_id"`
	Semester     int    `json:"semester"`
	Name         string `json:"name"`
}

// ListSections handles GET /sections.
func (h *Handler) ListSections(c *gin.Context) {
	out, err := h.Catalog.ListSections(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateSection handles POST /sections.
func (h *Handler) CreateSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DepartmentID == 0 || req.BatchID == 0 || req.Semester == 0 || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	id, err := h.Catalog.CreateSection(c.Request.Context(), req.DepartmentID, req.BatchID, req.Semester, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Section created"})
}

// UpdateSection handles PUT /sections/:id.
func (h *Handler) UpdateSection(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DepartmentID == 0 || req.BatchID == 0 || req.Semester == 0 || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	affected, err := h.Catalog.UpdateSection(c.Request.Context(), id, req.DepartmentID, req.BatchID, req.Semester, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Section not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Section updated"})
}

// DeleteSection handles DELETE /sections/:id.
func (h *Handler) DeleteSection(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	affected, err := h.Catalog.DeleteSection(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Section not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Section deleted"})
}

type courseRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Credits      int    `json:"credits"`
	Semester     int    `json:"semester"`
	DepartmentID int    `json:"department_id"`
}

func (r courseRequest) valid() bool {
	if r.Code == "" || r.Name == "" || r.Semester == 0 || r.DepartmentID == 0 {
		return false
	}
	return r.Type == "" || r.Type == "Lecture" || r.Type == "Lab"
}

// ListCourses handles GET /courses.
func (h *Handler) ListCourses(c *gin.Context) {
	out, err := h.Catalog.ListCourses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateCourse handles POST /courses.
func (h *Handler) CreateCourse(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing or invalid fields"})
		return
	}
	if req.Type == "" {
		req.Type = "Lecture"
	}
	id, err := h.Catalog.CreateCourse(c.Request.Context(), req.Code, req.Name, req.Type, req.Credits, req.Semester, req.DepartmentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Course created"})
}

// UpdateCourse handles PUT /courses/:id.
func (h *Handler) UpdateCourse(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing or invalid fields"})
		return
	}
	if req.Type == "" {
		req.Type = "Lecture"
	}
	affected, err := h.Catalog.UpdateCourse(c.Request.Context(), id, req.Code, req.Name, req.Type, req.Credits, req.Semester, req.DepartmentID)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course updated"})
}

// DeleteCourse handles DELETE /courses/:id.
func (h *Handler) DeleteCourse(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	affected, err := h.Catalog.DeleteCourse(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

type facultyRequest struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	Photo        string `json:"photo"`
	DepartmentID int    `json:"department_id"`
}

// ListFaculty handles GET /faculty.
func (h *Handler) ListFaculty(c *gin.Context) {
	out, err := h.Catalog.ListFaculty(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateFaculty handles POST /faculty.
func (h *Handler) CreateFaculty(c *gin.Context) {
	var req facultyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.Name == "" || req.Email == "" || req.DepartmentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	id, err := h.Catalog.CreateFaculty(c.Request.Context(), req.UserID, req.Name, req.Email, req.Mobile, req.Photo, req.DepartmentID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Faculty user_id or email already exists"})
			return
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Faculty created"})
}

// UpdateFaculty handles PUT /faculty/:id.
func (h *Handler) UpdateFaculty(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req facultyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.Name == "" || req.Email == "" || req.DepartmentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	affected, err := h.Catalog.UpdateFaculty(c.Request.Context(), id, req.UserID, req.Name, req.Email, req.Mobile, req.Photo, req.DepartmentID)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Faculty not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Faculty updated"})
}

// DeleteFaculty handles DELETE /faculty/:id.
func (h *Handler) DeleteFaculty(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	affected, err := h.Catalog.DeleteFaculty(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Faculty not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Faculty deleted"})
}

type holidayRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// ListHolidays handles GET /holidays (newest first).
func (h *Handler) ListHolidays(c *gin.Context) {
	out, err := h.Catalog.ListHolidays(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateHoliday handles POST /holidays.
func (h *Handler) CreateHoliday(c *gin.Context) {
	var req holidayRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" || req.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	id, err := h.Catalog.CreateHoliday(c.Request.Context(), req.Date, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Holiday created"})
}

// UpdateHoliday handles PUT /holidays/:id.
func (h *Handler) UpdateHoliday(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req holidayRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" || req.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	affected, err := h.Catalog.UpdateHoliday(c.Request.Context(), id, req.Date, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Holiday not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Holiday updated"})
}

// DeleteHoliday handles DELETE /holidays/:id.
func (h *Handler) DeleteHoliday(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	affected, err := h.Catalog.DeleteHoliday(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Holiday not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Holiday deleted"})
}
