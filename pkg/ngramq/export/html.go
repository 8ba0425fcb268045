package export

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
)

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(a atom.Atom, s string, attrs ...html.Attribute) *html.Node {
	n := element(a, attrs...)
	n.AppendChild(textNode(s))
	return n
}

const tableStyle = `body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse}
th,td{border:1px solid #ccc;padding:4px 8px}
td.num{text-align:right}
th{background:#f4f4f4}`

// WriteHTMLTable writes a standalone HTML page with one table of rows.
// Cell text is escaped by the renderer.
func WriteHTMLTable(w io.Writer, title string, rows []analytics.NgramAggregate) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, html.Attribute{Key: "lang", Val: "en"})
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	head.AppendChild(withText(atom.Title, title))
	head.AppendChild(withText(atom.Style, tableStyle))
	root.AppendChild(head)

	body := element(atom.Body)
	body.AppendChild(withText(atom.H1, title))
	body.AppendChild(withText(atom.P, fmt.Sprintf("%d n-grams", len(rows))))

	tbl := element(atom.Table)
	thead := element(atom.Thead)
	hr := element(atom.Tr)
	for _, h := range []string{"N-gram", "Queries", "Clicks", "Cost", "Conversions", "CTR", "CVR", "CPA"} {
		hr.AppendChild(withText(atom.Th, h))
	}
	thead.AppendChild(hr)
	tbl.AppendChild(thead)

	numeric := html.Attribute{Key: "class", Val: "num"}
	tbody := element(atom.Tbody)
	for _, r := range rows {
		tr := element(atom.Tr)
		tr.AppendChild(withText(atom.Td, r.Ngram))
		tr.AppendChild(withText(atom.Td, FormatMetric(float64(r.QueryCount), "query_count"), numeric))
		tr.AppendChild(withText(atom.Td, FormatMetric(float64(r.TotalClicks), "total_clicks"), numeric))
		tr.AppendChild(withText(atom.Td, FormatMetric(r.TotalCost, "total_cost"), numeric))
		tr.AppendChild(withText(atom.Td, FormatMetric(float64(r.TotalConversions), "total_conversions"), numeric))
		tr.AppendChild(withText(atom.Td, FormatMetric(r.CTR, "ctr"), numeric))
		tr.AppendChild(withText(atom.Td, FormatMetric(r.CVR, "cvr"), numeric))
		tr.AppendChild(withText(atom.Td, FormatMetric(r.CPA, "cpa"), numeric))
		tbody.AppendChild(tr)
	}
	tbl.AppendChild(tbody)
	body.AppendChild(tbl)
	root.AppendChild(body)

	return html.Render(w, doc)
}
