package handlers

import (
	"circle/auth"
	"circle/models"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Username string `json:"username"` // Username or email
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func AuthRegister(c *gin.Context) {
	req := RegisterRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("No data provided"))
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Username, email, and password are required"))
		return
	}
	user, err := auth.Register(req.Username, req.Email, req.Password, req.FullName, auth.ClientFrom(c))
	var validationErr auth.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, errorResponse(validationErr.Error()))
		return
	} else if err != nil {
		zap.S().Errorf("Registration error: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Registration failed"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":  statusSuccess,
		"message": "User registered successfully",
		"user":    user.Info(),
	})
}

func AuthLogin(c *gin.Context) {
	req := LoginRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Username and password are required"))
		return
	}
	result, err := auth.Login(req.Username, req.Password, auth.ClientFrom(c))
	if errors.Is(err, auth.ErrAccountLocked) {
		c.JSON(http.StatusLocked, errorResponse(err.Error()))
		return
	} else if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, errorResponse("Invalid username or password"))
		return
	} else if err != nil {
		zap.S().Errorf("Login error: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Login failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        statusSuccess,
		"message":       "Login successful",
		"user":          result.User,
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
	})
}

func AuthRefresh(c *gin.Context) {
	req := RefreshRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Refresh token is required"))
		return
	}
	pair, err := auth.Refresh(req.RefreshToken, auth.ClientFrom(c))
	if errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
		return
	} else if err != nil {
		zap.S().Errorf("Token refresh error: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Token refresh failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        statusSuccess,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func AuthLogout(c *gin.Context, user *models.User) {
	req := RefreshRequest{}
	_ = c.ShouldBindWith(&req, binding.JSON) // The body is optional
	if err := auth.Logout(user, req.RefreshToken, auth.ClientFrom(c)); err != nil {
		zap.S().Errorf("Logout error: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Logout failed"))
		return
	}
	auth.LoadSession(c).Forget()
	c.JSON(http.StatusOK, successResponse("Logout successful"))
}

func AuthChangePassword(c *gin.Context, user *models.User) {
	req := ChangePasswordRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Current and new password are required"))
		return
	}
	err := auth.ChangePassword(user, req.CurrentPassword, req.NewPassword, auth.ClientFrom(c))
	var validationErr auth.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, errorResponse(validationErr.Error()))
		return
	} else if errors.Is(err, auth.ErrInvalidCredentials) {
		// Not a 401, the access token itself is fine
		c.JSON(http.StatusBadRequest, errorResponse("Current password is incorrect"))
		return
	} else if err != nil {
		zap.S().Errorf("Change password error: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Password change failed"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Password changed successfully"))
}

func AuthMe(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "user": user.Info()})
}
