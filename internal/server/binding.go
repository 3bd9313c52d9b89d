package server

import (
	"errors"
	"net/http"

	"quiz-buzzer/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindMessages maps a struct field and failed validation tag to the message
// returned to the caller.
type bindMessages map[string]map[string]string

func (m bindMessages) resolve(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if msg := m[verr.Field()][verr.Tag()]; msg != "" {
				return msg
			}
		}
	}
	if fallback == "" {
		return "invalid request"
	}
	return fallback
}

func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	writeError(c, http.StatusBadRequest, messages.resolve(err, fallback))
	return false
}

type gameURI struct {
	Code string `uri:"code" binding:"required,max=8"`
}

// bindCode reads the :code path parameter. A code that fails binding cannot
// name a stored game, so callers answer it exactly as they answer an unknown
// code.
func bindCode(c *gin.Context) (string, bool) {
	var uri gameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		return "", false
	}
	return game.NormalizeCode(uri.Code), true
}
