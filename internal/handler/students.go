package handler

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"campuserp/internal/catalog"
	"campuserp/internal/store"
)

type studentRequest struct {
	RegistrationNo string `json:"registration_no"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Photo          string `json:"photo"`
	DepartmentID   int    `json:"department_id"`
	BatchID        int    `json:"batch_id"`
	SectionID      int    `json:"section_id"`
	Semester       int    `json:"semester"`
}

func (r studentRequest) valid() bool {
	return r.RegistrationNo != "" && r.Name != "" && r.Email != "" &&
		r.DepartmentID != 0 && r.BatchID != 0 && r.SectionID != 0 && r.Semester != 0
}

// ListStudents handles GET /students.
func (h *Handler) ListStudents(c *gin.Context) {
	out, err := h.Catalog.ListStudents(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateStudent handles POST /students.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	id, err := h.Catalog.CreateStudent(c.Request.Context(), catalog.NewStudent{
		RegistrationNo: req.RegistrationNo,
		Name:           req.Name,
		Email:          req.Email,
		Photo:          req.Photo,
		DepartmentID:   req.DepartmentID,
		BatchID:        req.BatchID,
		SectionID:      req.SectionID,
		Semester:       req.Semester,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Registration number or email already exists"})
			return
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Student created"})
}

// UpdateStudent handles PUT /students/:id.
func (h *Handler) UpdateStudent(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	affected, err := h.Catalog.UpdateStudent(c.Request.Context(), id, catalog.NewStudent{
		RegistrationNo: req.RegistrationNo,
		Name:           req.Name,
		Email:          req.Email,
		Photo:          req.Photo,
		DepartmentID:   req.DepartmentID,
		BatchID:        req.BatchID,
		SectionID:      req.SectionID,
		Semester:       req.Semester,
	})
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student updated"})
}

// DeleteStudent handles DELETE /students/:id.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	affected, err := h.Catalog.DeleteStudent(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

// bulkColumns is the required CSV header order for bulk import.
var bulkColumns = []string{"registration_no", "name", "email", "department_id", "batch_id", "section_id", "semester"}

// BulkImportStudents handles POST /students/bulk with a multipart "file"
// field holding a CSV. The whole file inserts atomically; a bad row rejects
// the upload with its line number.
func (h *Handler) BulkImportStudents(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "CSV file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file"})
		return
	}
	defer f.Close()

	students, badLine, err := parseStudentCSV(f)
	if err != nil {
		msg := "Invalid CSV"
		if badLine > 0 {
			msg = "Invalid CSV at line " + strconv.Itoa(badLine)
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}
	if len(students) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "CSV contains no rows"})
		return
	}

	if err := h.Catalog.BulkInsertStudents(c.Request.Context(), students); err != nil {
		if store.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Duplicate registration number or email in upload"})
			return
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Students imported", "count": len(students)})
}

// parseStudentCSV reads header + rows; returns the 1-based line of the first
// bad row when parsing fails.
func parseStudentCSV(r io.Reader) ([]catalog.NewStudent, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 1, err
	}
	if len(header) < len(bulkColumns) {
		return nil, 1, io.ErrUnexpectedEOF
	}
	for i, col := range bulkColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return nil, 1, io.ErrUnexpectedEOF
		}
	}

	var out []catalog.NewStudent
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, line, err
		}
		deptID, err1 := strconv.Atoi(strings.TrimSpace(row[3]))
		batchID, err2 := strconv.Atoi(strings.TrimSpace(row[4]))
		sectionID, err3 := strconv.Atoi(strings.TrimSpace(row[5]))
		semester, err4 := strconv.Atoi(strings.TrimSpace(row[6]))
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil ||
			strings.TrimSpace(row[0]) == "" || strings.TrimSpace(row[1]) == "" || strings.TrimSpace(row[2]) == "" {
			return nil, line, io.ErrUnexpectedEOF
		}
		out = append(out, catalog.NewStudent{
			RegistrationNo: strings.TrimSpace(row[0]),
			Name:           strings.TrimSpace(row[1]),
			Email:          strings.TrimSpace(row[2]),
			DepartmentID:   deptID,
			BatchID:        batchID,
			SectionID:      sectionID,
			Semester:       semester,
		})
	}
	return out, 0, nil
}
