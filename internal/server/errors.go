package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
)

// writeError maps the error category to a status code. Uncategorized errors
// are infrastructure failures and are not echoed to the caller.
func (s *Server) writeError(c *gin.Context, err error) {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		status := statusForCategory(rich.Category)
		if status < http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": rich.Message})
			return
		}
	}
	s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
