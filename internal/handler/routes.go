package handler

import (
	"github.com/gin-gonic/gin"

	"campuserp/internal/account"
	"campuserp/internal/auth"
)

// Register mounts the API under /api with per-role groups. Logins are open;
// everything else requires a bearer token with the group's role.
func (h *Handler) Register(r *gin.Engine, signingKey, issuer string) {
	api := r.Group("/api")

	dean := api.Group("/dean")
	dean.POST("/login", h.LoginDean)
	deanAuth := dean.Group("", auth.RequireRole(signingKey, issuer, account.RoleDean))
	{
		deanAuth.GET("/departments", h.ListDepartments)
		deanAuth.POST("/departments", h.CreateDepartment)
		deanAuth.PUT("/departments/:id", h.UpdateDepartment)
		deanAuth.DELETE("/departments/:id", h.DeleteDepartment)

		deanAuth.GET("/programs", h.ListPrograms)
		deanAuth.GET("/programs/:id/departments", h.ProgramDepartments)
		deanAuth.GET("/batches", h.ListBatches)

		deanAuth.GET("/sections", h.ListSections)
		deanAuth.POST("/sections", h.CreateSection)
		deanAuth.PUT("/sections/:id", h.UpdateSection)
		deanAuth.DELETE("/sections/:id", h.DeleteSection)

		deanAuth.GET("/faculty", h.ListFaculty)
		deanAuth.POST("/faculty", h.CreateFaculty)
		deanAuth.PUT("/faculty/:id", h.UpdateFaculty)
		deanAuth.DELETE("/faculty/:id", h.DeleteFaculty)

		deanAuth.GET("/students", h.ListStudents)
		deanAuth.POST("/students", h.CreateStudent)
		deanAuth.POST("/students/bulk", h.BulkImportStudents)
		deanAuth.PUT("/students/:id", h.UpdateStudent)
		deanAuth.DELETE("/students/:id", h.DeleteStudent)

		deanAuth.GET("/courses", h.ListCourses)
		deanAuth.POST("/courses", h.CreateCourse)
		deanAuth.PUT("/courses/:id", h.UpdateCourse)
		deanAuth.DELETE("/courses/:id", h.DeleteCourse)

		deanAuth.GET("/timeslots", h.ListTimeslots)
		deanAuth.GET("/timetable/:sectionId", h.SectionTimetable)
		deanAuth.POST("/timetable", h.ScheduleEntry)
		deanAuth.PUT("/timetable/:id", h.RescheduleEntry)
		deanAuth.DELETE("/timetable/:id", h.DeleteEntry)

		deanAuth.GET("/holidays", h.ListHolidays)
		deanAuth.POST("/holidays", h.CreateHoliday)
		deanAuth.PUT("/holidays/:id", h.UpdateHoliday)
		deanAuth.DELETE("/holidays/:id", h.DeleteHoliday)

		deanAuth.GET("/attendance/summary/:sectionId", h.SectionSummary)
		deanAuth.GET("/attendance/:sectionId/:date", h.SectionAttendance)
		deanAuth.PUT("/attendance/:id", h.ModifyAttendance)
	}

	faculty := api.Group("/faculty")
	faculty.POST("/login", h.LoginFaculty)
	facultyAuth := faculty.Group("", auth.RequireRole(signingKey, issuer, account.RoleFaculty))
	{
		facultyAuth.GET("/timetable/:facultyId", h.FacultyTimetable)
		facultyAuth.GET("/:facultyId/sessions", h.FacultySessions)
		facultyAuth.GET("/:facultyId/attendance-status", h.AttendanceStatus)
		facultyAuth.GET("/:facultyId/students", h.SessionStudents)
		facultyAuth.GET("/:facultyId/generate-qr", h.GenerateQR)
		facultyAuth.POST("/scan-face", h.ScanFace)
		facultyAuth.POST("/attendance", h.SubmitAttendance)
	}

	student := api.Group("/student")
	student.POST("/login", h.LoginStudent)
	studentAuth := student.Group("", auth.RequireRole(signingKey, issuer, account.RoleStudent))
	{
		studentAuth.GET("/timetable/:sectionId", h.SectionTimetable)
		studentAuth.GET("/:studentId/attendance", h.StudentAttendance)
		studentAuth.GET("/:studentId/attendance/summary", h.StudentSummary)
		studentAuth.GET("/:studentId/profile", h.StudentProfile)
		studentAuth.PUT("/:studentId/profile", h.UpdateStudentProfile)
	}

	it := api.Group("/it")
	it.POST("/login", h.LoginIT)
	itAuth := it.Group("", auth.RequireRole(signingKey, issuer, account.RoleIT))
	{
		itAuth.GET("/students/deactivated", h.DeactivatedStudents)
		itAuth.POST("/students/reactivate", h.ReactivateStudent)
		itAuth.GET("/students/issues", h.DeviceIssues)
		itAuth.POST("/students/reset-device", h.ResetDevice)
	}
}
