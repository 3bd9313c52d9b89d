package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// GameError is shown when a game code does not resolve to an active game.
func GameError(data GameErrorData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Game unavailable</title>
  </head>
  <body>
    <main class="shell">
      <section class="panel">
        <h1>Game unavailable</h1>
        <p class="error">`+templ.EscapeString(data.Message)+`</p>
        <a class="secondary" href="`+escapeURL(data.BackURL)+`">Back to start</a>
      </section>
    </main>
  </body>
</html>`)
		return err
	})
}
