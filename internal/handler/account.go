package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campuserp/internal/account"
	"campuserp/internal/apperr"
	"campuserp/internal/auth"
)

type loginRequest struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func loginResponse(id account.Identity, pair auth.TokenPair) gin.H {
	return gin.H{
		"success":       true,
		"message":       "Login successful",
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          id,
	}
}

// failLogin keeps the login surface's {"success":false} shape.
func failLogin(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"success": false, "message": apperr.MessageOf(err)})
}

// LoginDean handles POST /api/dean/login.
func (h *Handler) LoginDean(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failLogin(c, apperr.New(apperr.InvalidInput, "Invalid request body"))
		return
	}
	id, pair, err := h.Accounts.LoginDean(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		failLogin(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse(id, pair))
}

// LoginFaculty handles POST /api/faculty/login.
func (h *Handler) LoginFaculty(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failLogin(c, apperr.New(apperr.InvalidInput, "Invalid request body"))
		return
	}
	id, pair, err := h.Accounts.LoginFaculty(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		failLogin(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse(id, pair))
}

// LoginStudent handles POST /api/student/login.
func (h *Handler) LoginStudent(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failLogin(c, apperr.New(apperr.InvalidInput, "Invalid request body"))
		return
	}
	id, pair, err := h.Accounts.LoginStudent(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failLogin(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse(id, pair))
}

// LoginIT handles POST /api/it/login.
func (h *Handler) LoginIT(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failLogin(c, apperr.New(apperr.InvalidInput, "Invalid request body"))
		return
	}
	id, pair, err := h.Accounts.LoginIT(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failLogin(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse(id, pair))
}
