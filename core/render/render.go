// Package render converts typed stream payloads into HTML display markup.
// Every server-supplied substring is escaped; only the structural tags
// produced here are emitted raw.
package render

import (
	"html"
	"net/url"
	"strings"

	"lingchat/core/stream"
)

const (
	sidenoteStyle = "color:#6a5acd; font-style:italic; border-left:3px solid #6a5acd; padding-left:8px;"
	fragmentStyle = "margin-top: 7px"
)

// Escape escapes &, <, >, " and '.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Sidenote wraps text in the italic aside block.
func Sidenote(text string) string {
	return `<br><i style="` + sidenoteStyle + `">` + Escape(text) + `</i></br>`
}

// Fragment renders a link-channel payload. Unknown types fall back to the
// escaped content as text. An empty result means there is nothing to show.
func Fragment(p stream.Payload) string {
	switch p.Type {
	case stream.TypeCode:
		return `<pre style="` + fragmentStyle + `"><code class="language-` + Escape(p.Language) + `">` +
			Escape(p.Content) + `</code></pre>`
	case stream.TypeImage:
		if !SafeURL(p.Content, true) {
			return Escape(p.Content)
		}
		return `<img src="` + Escape(p.Content) + `" class="max-w-full h-auto rounded-lg" style="max-height:300px; ` +
			fragmentStyle + `">`
	case stream.TypeTable:
		return table(p.Data)
	case stream.TypeLink:
		if !SafeURL(p.Content, false) {
			return Escape(LinkText(p))
		}
		return `<a href="` + Escape(p.Content) + `" target="_blank" rel="noopener" class="text-blue-500 hover:underline" style="` +
			fragmentStyle + `">` + Escape(LinkText(p)) + `</a>`
	default:
		return Escape(p.Content)
	}
}

// SafeURL reports whether u may be used as a link or image target: http,
// https or relative, plus data:image/ URLs when image is set.
func SafeURL(u string, image bool) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https":
		return true
	case "data":
		return image && strings.HasPrefix(strings.ToLower(parsed.Opaque), "image/")
	}
	return false
}

// LinkText is the visible text of a link payload: webText, else the URL.
func LinkText(p stream.Payload) string {
	if p.WebText != "" {
		return p.WebText
	}
	return p.Content
}

// table renders data[0] as the header row and the rest as body rows. The
// declared row and column counts are not consulted.
func table(data [][]string) string {
	var b strings.Builder
	b.WriteString(`<div class="table-container"><table class="custom-table" style="` + fragmentStyle + `">`)
	b.WriteString("<thead><tr>")
	if len(data) > 0 {
		writeCells(&b, data[0])
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range data[min(1, len(data)):] {
		b.WriteString("<tr>")
		writeCells(&b, row)
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div>")
	return b.String()
}

func writeCells(b *strings.Builder, row []string) {
	for _, cell := range row {
		b.WriteString("<td>")
		b.WriteString(Escape(cell))
		b.WriteString("</td>")
	}
}
