// Package export writes the display history as a standalone HTML page.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"lingchat/core"
	"lingchat/core/provider"
)

var page = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="generator" content="lingchat">
    <title>{{.Title}}</title>
    <style>
        body { font-family: system-ui, sans-serif; background: #f3f4f6; margin: 0; }
        main { max-width: 860px; margin: 0 auto; padding: 24px; }
        .message { margin: 12px 0; padding: 12px 16px; border-radius: 8px; background: #fff; }
        .user { background: #e0e7ff; margin-left: 15%; }
        .meta { color: #6b7280; font-size: 12px; margin-bottom: 6px; }
        .content { white-space: pre-wrap; word-break: break-word; }
        pre { background: #1f2937; color: #f9fafb; padding: 10px; border-radius: 6px; overflow-x: auto; }
        .custom-table { border-collapse: collapse; }
        .custom-table td { border: 1px solid #d1d5db; padding: 4px 8px; }
        .custom-table thead td { font-weight: 600; background: #f9fafb; }
        img { max-width: 100%; }
    </style>
</head>
<body>
<main>
{{- range .Messages}}
    <div class="message {{.Role}}">
        <div class="meta">{{.Label}} · {{.Time}}</div>
        <div class="content">{{.Body}}</div>
    </div>
{{- end}}
    <footer class="meta">Exported {{.Exported}}</footer>
</main>
</body>
</html>
`))

type pageData struct {
	Title    string
	Exported string
	Messages []pageMessage
}

type pageMessage struct {
	Role  string
	Label string
	Time  string
	Body  template.HTML
}

// HTMLExporter writes transcripts into Dir unless a path is given.
type HTMLExporter struct {
	Dir string
	Now func() time.Time
}

// NewHTMLExporter creates an exporter writing to dir by default.
func NewHTMLExporter(dir string) *HTMLExporter {
	return &HTMLExporter{Dir: dir, Now: time.Now}
}

// Render builds the HTML page for messages.
func Render(messages []core.Message, exported time.Time) ([]byte, error) {
	data := pageData{
		Title:    "lingchat transcript " + exported.Format("2006-01-02 15:04"),
		Exported: exported.Format(time.RFC1123),
	}
	for _, m := range messages {
		label := "Assistant"
		if m.Role == provider.RoleUser {
			label = "You"
		}
		data.Messages = append(data.Messages, pageMessage{
			Role:  string(m.Role),
			Label: label,
			Time:  m.Time,
			// DisplayMarkup escapes every plain-text part.
			Body: template.HTML(m.DisplayMarkup()),
		})
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render transcript: %w", err)
	}
	return buf.Bytes(), nil
}

// Export writes messages to path, or to a timestamped file in Dir when path
// is empty, and returns the path written.
func (e *HTMLExporter) Export(messages []core.Message, path string) (string, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	ts := now()
	if path == "" {
		if e.Dir == "" {
			return "", fmt.Errorf("no export directory configured")
		}
		path = filepath.Join(e.Dir, "lingchat-"+ts.Format("20060102-150405")+".html")
	}

	out, err := Render(messages, ts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}
