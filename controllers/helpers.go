package controllers

import (
	"net/http"

	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// salonFromContext pulls the salon id claim set by the auth middleware. On
// failure it writes the error response and returns ok=false.
func salonFromContext(c *gin.Context) (uuid.UUID, bool) {
	salonID, exists := c.Get("salonId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return uuid.Nil, false
	}

	salonUUID, err := uuid.Parse(salonID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid salon ID format")
		return uuid.Nil, false
	}
	return salonUUID, true
}

// paramUUID parses a :param path segment as a UUID.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
