package handlers

import (
	"circle/ai"
	"circle/models"
	"circle/search"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type SearchRequest struct {
	Query string `json:"query"`
}

func searchInput(c *gin.Context, user *models.User) (query string, memories []models.Memory, ok bool) {
	req := SearchRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, NoQueryResponse)
		return
	}
	memories, err := models.MemoriesForUser(user.ID)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	return strings.TrimSpace(req.Query), memories, true
}

// SearchSmart returns the top scored memories (a plain list)
func SearchSmart(c *gin.Context, user *models.User) {
	query, memories, ok := searchInput(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, search.Smart(memories, query))
}

func SearchAI(c *gin.Context, user *models.User) {
	query, memories, ok := searchInput(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":        query,
		"result":       search.Ask(c.Request.Context(), ai.DeepSeek, memories, query),
		"ai_available": ai.DeepSeek != nil,
	})
}
