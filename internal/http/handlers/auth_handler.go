// Login HTTP handler.
//
//   - POST /auth/login
//
// The API is stateless: protected routes take HTTP Basic credentials on
// every call. Login lets a front end check a username/password/role triple
// once and fetch the profile to display.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the JSON payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"client1"`
	Password string `json:"password" binding:"required" example:"pass1"`
	Role     string `json:"role"     binding:"required" enums:"admin,client" example:"client"`
}

// Login godoc
// @ID          login
// @Summary     Verify credentials
// @Description Checks username, password and role together and returns the user's profile. Any mismatch yields the same 401.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object} domain.User
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Invalid credentials"
// @Failure     429  {object} handlers.ErrorResponse "Too many requests"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username, password and role are required")
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
