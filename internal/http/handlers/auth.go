package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/transfermarket-backend/internal/http/response"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		TeamName string `json:"team_name"`
		Country  string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFailure(c, http.StatusBadRequest, "invalid_request", msgInvalidBody)
		return
	}
	res, err := ah.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		TeamName: req.TeamName,
		Country:  req.Country,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusCreated, "Registered.", tokenPayload(res, ah.authService))
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFailure(c, http.StatusBadRequest, "invalid_request", msgInvalidBody)
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.RespondFailure(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
			return
		}
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, tokenPayload(res, ah.authService))
}

func tokenPayload(res *services.AuthResult, auth services.AuthService) gin.H {
	out := gin.H{
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   int(auth.GetAccessTTL().Seconds()),
		"user":         res.User,
	}
	if res.Team != nil {
		out["team"] = res.Team
	}
	return out
}
