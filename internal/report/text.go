package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// WriteText 以对齐的纯文本输出报告
func WriteText(w io.Writer, doc Document) error {
	var b strings.Builder
	b.WriteString(doc.Title + "\n\n")
	b.WriteString(SummaryHeading + "\n")
	writeTextTable(&b, doc.Summary)
	b.WriteString("\n" + DistributionHeading + "\n")
	writeTextTable(&b, doc.Distribution)
	b.WriteString("\n" + doc.Footer + "\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	return nil
}

func writeTextTable(b *strings.Builder, t Table) {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c))
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, " | "), " ") + "\n")
	}

	line(t.Header)
	sep := make([]string, len(widths))
	for i, n := range widths {
		sep[i] = strings.Repeat("-", n)
	}
	b.WriteString(strings.Join(sep, "-+-") + "\n")
	for _, row := range t.Rows {
		line(row)
	}
}
