package auth

import (
	"circle/models"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// User is authenticated and posseses the required role
type HandlerFunc func(c *gin.Context, user *models.User)

// Router is a wrapper class that adds auth checks + User pre-loading
type Router struct {
	Base gin.IRoutes
}

// BearerToken reads the Authorization header, falling back to the "token"
// query parameter (websockets and <img> tags can't set headers)
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc, required []models.Role) {
	token := BearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authentication required"})
		return
	}
	user, err := VerifyAccess(token)
	if err != nil {
		message := "Invalid token"
		if errors.Is(err, ErrTokenExpired) {
			message = "Token has expired"
		} else if errors.Is(err, ErrAccountInactive) {
			message = "Account is inactive"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": message})
		return
	}
	for _, role := range required {
		if !user.HasRole(role) {
			audit(eventAccessDenied, &user, ClientFrom(c), c.Request.Method+" "+c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "Insufficient permissions"})
			return
		}
	}
	handler(c, &user)
}

func (cr *Router) POST(path string, handler HandlerFunc, required ...models.Role) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) GET(path string, handler HandlerFunc, required ...models.Role) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) PUT(path string, handler HandlerFunc, required ...models.Role) {
	cr.Base.PUT(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) DELETE(path string, handler HandlerFunc, required ...models.Role) {
	cr.Base.DELETE(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}
