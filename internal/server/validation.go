package server

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxGameNameLength = 100

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("gamename", func(fl validator.FieldLevel) bool {
			return validGameName(fl.Field().String())
		})
	})
}

func validGameName(name string) bool {
	return len(normalizeText(name)) <= maxGameNameLength
}

// normalizeText trims and collapses runs of whitespace.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
