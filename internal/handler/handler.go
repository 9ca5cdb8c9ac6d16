// Package handler exposes the HTTP surface over gin: dean CRUD and reports,
// faculty scheduling/attendance flows, student self-service, and the IT desk.
package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campuserp/internal/account"
	"campuserp/internal/apperr"
	"campuserp/internal/attendance"
	"campuserp/internal/catalog"
	"campuserp/internal/cloudinary"
	"campuserp/internal/queue"
	"campuserp/internal/summary"
	"campuserp/internal/timetable"
)

// Handler binds all services to gin routes.
type Handler struct {
	Catalog    *catalog.Repository
	Timetable  *timetable.Service
	Attendance *attendance.Service
	Accounts   *account.Service
	Summaries  *summary.Cache
	Uploader   *cloudinary.Client
	Queue      queue.Queue
}

// fail writes the error taxonomy mapping. Store failures get logged with
// their cause; clients only see the safe message.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"message": apperr.MessageOf(err)})
}

// intParam parses a numeric path parameter, writing a 400 on failure.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// intQuery parses a numeric query parameter; 0 means absent or invalid.
func intQuery(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}
