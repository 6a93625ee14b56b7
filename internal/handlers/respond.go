package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/untangle-ph/untangle-backend/internal/apperrors"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// pagination reads page/limit query parameters and clamps them to sane
// values. Garbage or out-of-range input falls back to the defaults instead of
// producing a negative skip downstream.
func pagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// limitQuery reads a bare limit parameter with the given default, clamped the
// same way as pagination.
func limitQuery(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 {
		limit = def
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return limit
}

// writeError maps an application error to its HTTP status. Unclassified
// errors become 500s with a generic body.
func writeError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict, apperrors.KindInvalidState:
		status = http.StatusConflict
	case apperrors.KindPreconditionFailed:
		status = http.StatusPreconditionFailed
	case apperrors.KindDeadlineExceeded:
		status = http.StatusGone
	case apperrors.KindInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.KindForbidden:
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": string(kind)})
}

// listResponse is the envelope for paginated listings.
func listResponse(items interface{}, total int64, page, limit int) gin.H {
	return gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	}
}
