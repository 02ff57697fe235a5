package http

import (
	"bytes"
	"html/template"
)

type documentsPage struct {
	WorkflowID  string
	JobTitle    string
	Company     string
	CV          string
	CoverLetter string
}

var documentsTmpl = template.Must(template.New("documents").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.JobTitle}}{{if .Company}} at {{.Company}}{{end}}</title>
<style>
body { font-family: Georgia, serif; margin: 18mm; color: #222; }
h1 { font-size: 16pt; margin-bottom: 4mm; }
pre { white-space: pre-wrap; font-family: inherit; font-size: 11pt; line-height: 1.4; }
.letter { page-break-before: always; }
footer { font-size: 8pt; color: #888; margin-top: 8mm; }
</style>
</head>
<body>
<section class="cv">
<h1>Curriculum Vitae</h1>
<pre>{{.CV}}</pre>
</section>
<section class="letter">
<h1>Cover Letter</h1>
<pre>{{.CoverLetter}}</pre>
</section>
<footer>workflow {{.WorkflowID}}</footer>
</body>
</html>
`))

func renderDocumentsHTML(p documentsPage) (string, error) {
	var buf bytes.Buffer
	if err := documentsTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
