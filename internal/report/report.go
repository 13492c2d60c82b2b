// Package report renders catalog statistics as Markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"

	"github.com/stocksmarthub/backend/internal/domain"
)

var renderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
	Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML,
})

var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"markdown": func(text string) template.HTML {
		return template.HTML(blackfriday.Run([]byte(text), blackfriday.WithRenderer(renderer)))
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{markdown .Body}}
</body>
</html>
`))

// Markdown renders the summary as a Markdown document
func Markdown(s *domain.CatalogSummary, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Catalog summary\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	b.WriteString("| Metric | Count |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Vendors | %d |\n", s.TotalVendors)
	fmt.Fprintf(&b, "| Products | %d |\n", s.TotalProducts)
	fmt.Fprintf(&b, "| With images | %d |\n", s.WithImages)
	fmt.Fprintf(&b, "| Without images | %d |\n", s.WithoutImages)
	fmt.Fprintf(&b, "| Image coverage | %s |\n", coverage(s.WithImages, s.TotalProducts))

	if len(s.Groups) == 0 {
		return b.String()
	}

	b.WriteString("\n## Products by group\n\n")
	b.WriteString("| Group | Products | With images |\n|---|---:|---:|\n")
	for _, g := range s.Groups {
		name := g.GroupName
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(&b, "| %s | %d | %d |\n", escapeCell(name), g.Products, g.WithImages)
	}
	return b.String()
}

// HTML renders the summary as a standalone HTML page
func HTML(s *domain.CatalogSummary, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := page.Execute(&buf, map[string]any{
		"Title": "Catalog summary",
		"Body":  Markdown(s, generatedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func coverage(part, total int64) string {
	if total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}

// escapeCell makes database text safe inside a table cell
func escapeCell(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "|", `\|`)
}
