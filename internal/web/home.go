package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Quiz Buzzer</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Quiz Buzzer</span>
        <h1>First to buzz gets to answer.</h1>
        <p>Host a quiz from one screen while everyone buzzes from their phone.</p>
      </header>

      <section class="panel">
        <h2>Host a game</h2>
        <form id="createForm">
          <input name="name" placeholder="Quiz Game" maxlength="100" autocomplete="off"/>
          <button type="submit" class="primary">Create game</button>
        </form>
        <div id="createResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Join a game</h2>
        <form id="joinForm">
          <input name="code" placeholder="Game code" maxlength="8" autocomplete="off" required/>
          <button type="submit" class="secondary">Find game</button>
        </form>
      </section>
    </main>

    <script>
      const createForm = document.getElementById("createForm");
      const createResult = document.getElementById("createResult");
      const joinForm = document.getElementById("joinForm");

      createForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        createResult.textContent = "Creating game...";
        const name = createForm.elements.name.value.trim();
        const res = await fetch("/api/games", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ name })
        });
        const data = await res.json();
        if (!res.ok) {
          createResult.textContent = data.error || "Failed to create game.";
          return;
        }
        createResult.textContent = "Game created. Code: " + data.code;
      });

      joinForm.addEventListener("submit", (event) => {
        event.preventDefault();
        const code = joinForm.elements.code.value.trim().toUpperCase();
        if (code) {
          window.location.href = "/games/" + encodeURIComponent(code);
        }
      });
    </script>
  </body>
</html>`)
		return err
	})
}
