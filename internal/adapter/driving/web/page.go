package web

import (
	"context"
	"io"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/pike13bridge/internal/adapter/driving/web/viewmodel"
)

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;line-height:1.5;color:#1f2933}
.status{display:inline-block;padding:.2rem .6rem;border-radius:.3rem;background:#e4e7eb}
.status.ok{background:#c6f7e2}
a.button{display:inline-block;padding:.5rem 1rem;background:#2680c2;color:#fff;border-radius:.3rem;text-decoration:none}
pre{background:#f5f7fa;padding:.75rem;overflow-x:auto}`

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title><style>`+pageStyle+`</style></head><body>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Landing renders the connection status, the connect link, and the usage notes.
func Landing(v vm.LandingViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		statusClass := "status"
		if v.Authenticated {
			statusClass += " ok"
		}

		buttonText := "Connect to Pike13"
		if v.Authenticated {
			buttonText = "Reconnect"
		}

		head := `<h1>` + templ.EscapeString(v.Title) + `</h1>` +
			`<p><span class="` + statusClass + `">` + templ.EscapeString(v.StatusLabel()) + `</span></p>` +
			`<p><a class="button" href="` + templ.EscapeString(v.LoginPath) + `">` + buttonText + `</a></p>`
		if v.FieldName != "" {
			head += `<p>Membership field: <code>` + templ.EscapeString(v.FieldName) + `</code></p>`
		}
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}

		return templ.Raw(v.UsageHTML).Render(ctx, w)
	})
}
