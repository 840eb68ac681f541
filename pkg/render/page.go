// Render HTML for the session status page

package render

import (
	"html/template"
	"io"
)

// StatusPage is the view model for one session's status page.
type StatusPage struct {
	SessionID     string
	Phase         string
	Locus         string
	Flank         int64
	Validated     bool
	ProposedLocus string
	Reasons       []string
	RenderError   string
	Artifacts     []Artifact
}

var status_page_template *template.Template

// init initializes the template used for rendering the status page.
func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		<link href="/static/style.css" rel="stylesheet"></link>
		<title>Session {{ .SessionID }}</title>
	</head>
	<body>
		<h1>Session {{ .SessionID }}</h1>
		<p>Phase: {{ .Phase }}</p>
		{{ if .Locus }}<p>Current query: {{ .Locus }} (flank {{ .Flank }})</p>{{ end }}
		<p>Validated: {{ .Validated }}</p>
		{{ if .ProposedLocus }}
		<div>
			<p>Re-center on {{ .ProposedLocus }}?</p>
			<form method="post" action="/session/{{ .SessionID }}/confirm">
				<button name="accept" value="true">Render</button>
				<button name="accept" value="false">Keep current results</button>
			</form>
		</div>
		{{ end }}
		{{ if .RenderError }}
		<div>
			<p>The query was valid but rendering failed: {{ .RenderError }}</p>
		</div>
		{{ end }}
		{{ if .Reasons }}
		<h2>Problems</h2>
		<ul>
		{{ range .Reasons }}<li>{{ . }}</li>
		{{ end }}</ul>
		{{ end }}
		{{ if .Artifacts }}
		<h2>Plots</h2>
		<ul>
		{{ range .Artifacts }}<li>{{ .Name }}</li>
		{{ end }}</ul>
		{{ end }}
	</body>
	</html>`

	status_page_template = template.Must(template.New("status_page").Parse(mainTmpl))
}

func RenderStatusPage(w io.Writer, page StatusPage) error {
	return status_page_template.Execute(w, page)
}
