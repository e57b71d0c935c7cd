package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"shopapi/internal/middleware"
	"shopapi/internal/store"
	"shopapi/internal/validation"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		routeLogger(c, route).WithField("panic", r).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func routeLogger(c *gin.Context, route string) *log.Entry {
	return log.WithFields(log.Fields{
		"route":      route,
		"request_id": middleware.GetRequestID(c),
	})
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	routeLogger(c, route).WithFields(log.Fields{
		"status":  status,
		"message": message,
	}).Info("returning error")
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondValidationError(c *gin.Context, route string, err error) {
	fields := validation.Fields(err)
	routeLogger(c, route).WithField("fields", fields).Info("validation failed")
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":  "validation failed",
		"fields": fields,
	})
}

// respondStoreError maps store failures onto HTTP statuses. Anything the
// store did not classify is logged and reported as a database error.
func respondStoreError(c *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, err.Error())
	case errors.Is(err, store.ErrConflict):
		respondWithError(c, http.StatusConflict, route, err.Error())
	case errors.Is(err, store.ErrInvalidReference),
		errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, store.ErrNotCancelable),
		errors.Is(err, store.ErrInvalidTransition):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(c, http.StatusGatewayTimeout, route, "request timed out")
	default:
		routeLogger(c, route).WithError(err).Error("store failure")
		respondWithError(c, http.StatusInternalServerError, route, "db error")
	}
}

func bindJSON(c *gin.Context, route string, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondValidationError(c, route, err)
		return false
	}
	return true
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, route, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondWithError(c, http.StatusBadRequest, route, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}
