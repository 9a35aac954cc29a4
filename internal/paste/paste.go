// Package paste turns raw pasted text into extracted tables without calling
// the vision model. It recognizes HTML tables, tab-separated and comma-
// separated text, falling back to one column of lines. Parsing is
// deterministic and never fails: ragged rows are padded by the positional
// adaptation in the table package.
package paste

import (
	"encoding/csv"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/gotabular/internal/table"
)

// Parse converts pasted text into a Result. The first row of each detected
// table is treated as the header row.
func Parse(text string) table.Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return table.Result{}
	}
	if strings.Contains(strings.ToLower(trimmed), "<table") {
		if res := parseHTML(trimmed); len(res.Tables) > 0 {
			return res
		}
	}
	rows := splitRows(trimmed)
	if len(rows) == 0 {
		return table.Result{}
	}
	return table.Result{Tables: []table.Table{
		table.FromPositional("", "", rows[0], rows[1:]),
	}}
}

// splitRows picks the delimiter once for the whole paste: tab wins if any
// line contains one, then comma via the csv reader, then one cell per line.
func splitRows(text string) [][]string {
	lines := make([]string, 0, 32)
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return nil
	}
	if strings.ContainsRune(text, '\t') {
		out := make([][]string, 0, len(lines))
		for _, l := range lines {
			out = append(out, strings.Split(l, "\t"))
		}
		return out
	}
	if strings.ContainsRune(lines[0], ',') {
		r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		if recs, err := r.ReadAll(); err == nil && len(recs) > 0 {
			return recs
		}
	}
	out := make([][]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, []string{strings.TrimSpace(l)})
	}
	return out
}

// parseHTML walks the document and emits one Table per <table> element.
func parseHTML(input string) table.Result {
	node, err := html.Parse(strings.NewReader(input))
	if err != nil || node == nil {
		return table.Result{}
	}
	var res table.Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if t, ok := tableFromNode(n); ok {
				res.Tables = append(res.Tables, t)
			}
			return // nested tables are not split out
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return res
}

func tableFromNode(n *html.Node) (table.Table, bool) {
	var rows [][]string
	var collectRows func(n *html.Node)
	collectRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, nodeText(c))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectRows(c)
		}
	}
	collectRows(n)
	if len(rows) == 0 {
		return table.Table{}, false
	}
	caption := ""
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "caption" {
			caption = nodeText(c)
			break
		}
	}
	return table.FromPositional(caption, "", rows[0], rows[1:]), true
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
