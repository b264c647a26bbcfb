package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"

	"videoxt/domain/extraction"
)

// LinkData is a link as the templates render it
type LinkData struct {
	Name string
	URL  string
	Size string // e.g., "1.50 MB", empty when unknown
}

// TemplateData contains all the fields available for email template rendering
type TemplateData struct {
	Greeting   string // Dynamic greeting based on recipient count
	Source     string
	Count      int
	Links      []LinkData
	SenderName string
}

// NewTemplateData builds the template fields for req
func NewTemplateData(req *ShareRequest) TemplateData {
	links := make([]LinkData, len(req.Links))
	for i, l := range req.Links {
		size, _ := extraction.FormatBytes(l.Size)
		links[i] = LinkData{Name: l.Name, URL: l.URL, Size: size}
	}
	return TemplateData{
		Greeting:   FormatGreeting(req.To),
		Source:     req.Source,
		Count:      len(links),
		Links:      links,
		SenderName: req.SenderName,
	}
}

// EmailTemplate contains the templates for rendering emails
type EmailTemplate struct {
	SubjectFormat string
	PlainText     string
	HTML          string
}

// DefaultTemplate is the standard email template for shared extractions
var DefaultTemplate = EmailTemplate{
	SubjectFormat: `{{.Source}}: {{.Count}} shared {{if eq .Count 1}}file{{else}}files{{end}}`,
	PlainText: `{{.Greeting}}

Here {{if eq .Count 1}}is the file{{else}}are the files{{end}} from {{.Source}}.

{{range .Links}}{{.Name}}{{if .Size}} ({{.Size}}){{end}}: {{.URL}}
{{end}}
Thanks!{{if .SenderName}}
~{{.SenderName}}{{end}}`,
	HTML: `<div dir="ltr">{{.Greeting}}<br><br>
Here {{if eq .Count 1}}is the file{{else}}are the files{{end}} from {{.Source}}.<br>
<ul>{{range .Links}}<li><a href="{{.URL}}">{{.Name}}</a>{{if .Size}} ({{.Size}}){{end}}</li>{{end}}</ul>
Thanks!{{if .SenderName}}<br>
~{{.SenderName}}{{end}}</div>`,
}

// FormatGreeting creates an appropriate greeting based on number of recipients
// 1 recipient: "Dear John,"
// 2 recipients: "Dear John & Jane,"
// 3+ recipients: "Hey Everyone!"
func FormatGreeting(recipients []Recipient) string {
	switch len(recipients) {
	case 0:
		return "Hello,"
	case 1:
		return fmt.Sprintf("Dear %s,", firstName(recipients[0]))
	case 2:
		return fmt.Sprintf("Dear %s & %s,", firstName(recipients[0]), firstName(recipients[1]))
	default:
		return "Hey Everyone!"
	}
}

// firstName is the first word of the recipient's name, or "Friend"
func firstName(r Recipient) string {
	fields := strings.Fields(r.Name)
	if len(fields) == 0 {
		return "Friend"
	}
	return fields[0]
}

// RenderSubject renders the email subject using the template
func (t *EmailTemplate) RenderSubject(data TemplateData) (string, error) {
	return renderText("subject", t.SubjectFormat, data)
}

// RenderPlainText renders the plain text email body
func (t *EmailTemplate) RenderPlainText(data TemplateData) (string, error) {
	return renderText("plaintext", t.PlainText, data)
}

// RenderHTML renders the HTML email body with file names and URLs escaped
func (t *EmailTemplate) RenderHTML(data TemplateData) (string, error) {
	tmpl, err := htmltemplate.New("html").Parse(t.HTML)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func renderText(name, tmplStr string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
