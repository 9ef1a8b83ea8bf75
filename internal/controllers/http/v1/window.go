package http

import (
	"errors"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"

	"weathercast/internal/window"
)

var page = template.Must(template.New("window").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .Busy}}<meta http-equiv="refresh" content="1">{{end}}
<style>
body { font-family: sans-serif; margin: 1.5em; }
.row { display: flex; gap: .5em; align-items: center; margin-bottom: 1em; }
textarea { width: 100%; font-family: monospace; }
figure.chart { margin: 1em 0; }
</style>
</head>
<body>
<div class="row">
<form method="post" action="/submit" class="row">
<label for="city">Enter city name:</label>
<input id="city" name="city" value="{{.City}}"{{if .Busy}} disabled{{end}}>
<button type="submit"{{if .Busy}} disabled{{end}}>Get Weather</button>
</form>
{{if .Busy}}<form method="post" action="/cancel"><button type="submit">Cancel</button></form>{{end}}
</div>
<textarea id="report" rows="24"{{if .Report.ReadOnly}} readonly{{end}}>{{.Report.Text}}</textarea>
<div id="charts">
{{range .Charts}}<figure class="chart" id="chart-{{.ID}}">{{if .SVG}}{{.SVG}}{{else}}<p class="placeholder">{{.Note}}</p>{{end}}<figcaption>{{.City}}</figcaption></figure>
{{end}}</div>
{{with .Dialog}}<dialog open id="error">
<p><strong>{{.Title}}</strong></p>
<p>{{.Message}}</p>
<form method="post" action="/dismiss"><button type="submit">OK</button></form>
</dialog>{{end}}
</body>
</html>
`))

type pageChart struct {
	ID   string
	City string
	SVG  template.HTML
	Note string
}

type pageData struct {
	window.View
	Charts []pageChart
}

func (r *routes) handleWindow(c *fiber.Ctx) error {
	v := r.window.Snapshot()

	data := pageData{View: v, Charts: make([]pageChart, 0, len(v.Charts))}
	for _, ch := range v.Charts {
		// the SVG is produced by our own chart renderer
		data.Charts = append(data.Charts, pageChart{ID: ch.ID, City: ch.City, SVG: template.HTML(ch.SVG), Note: ch.Note})
	}

	c.Type("html", "utf-8")
	return page.Execute(c, data)
}

func (r *routes) handleState(c *fiber.Ctx) error {
	return c.JSON(r.window.Snapshot())
}

func (r *routes) handleSubmit(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.FormValue("city"))

	id, err := r.window.Submit(city)
	switch {
	case errors.Is(err, window.ErrBusy):
		r.l.Warning("submit ignored, request in flight", map[string]any{"city": city})
	case err != nil:
		r.l.Error(err, map[string]any{"city": city})
	default:
		c.Set("X-Submission-ID", id)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func (r *routes) handleCancel(c *fiber.Ctx) error {
	if r.window.Cancel() {
		r.l.Info("submission cancel requested")
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (r *routes) handleDismiss(c *fiber.Ctx) error {
	r.window.DismissError()
	return c.Redirect("/", fiber.StatusSeeOther)
}
