package handlers

import (
	"circle/models"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func ProfileSave(c *gin.Context, user *models.User) {
	profile := models.Profile{}
	if err := c.ShouldBindWith(&profile, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, BadRequestResponse)
		return
	}
	profile.UserID = user.ID
	profile.Name = strings.TrimSpace(profile.Name)
	if err := models.ProfileSave(&profile); err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, successResponse("Profile saved"))
}

func ProfileGet(c *gin.Context, user *models.User) {
	profile, err := models.ProfileFor(user.ID)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	} else if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":      true,
		"name":        profile.Name,
		"birth_date":  profile.BirthDate,
		"family_role": profile.FamilyRole,
		"birth_place": profile.BirthPlace,
	})
}
