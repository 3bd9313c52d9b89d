package web

import (
	"strings"

	"github.com/a-h/templ"
)

func escapeURL(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") {
		return "/"
	}
	return templ.EscapeString(string(templ.URL(path)))
}
