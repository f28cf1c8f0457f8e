package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"agentdesk/internal"
	"agentdesk/internal/util"
)

// LooksLikeHTMLTable reports whether a pasted blob is table markup rather
// than delimited text (pasting from a web page or an HTML email body).
func LooksLikeHTMLTable(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "<table") && strings.Contains(lower, "<tr")
}

// ParseHTMLTable extracts the first table with a header row and at least one
// data row into a RawTable.
func ParseHTMLTable(html string) (internal.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return internal.RawTable{}, err
	}

	var cells [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}
		rows.Each(func(_ int, row *goquery.Selection) {
			rowCells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				rowCells = append(rowCells, util.CollapseSpaces(cell.Text()))
			})
			cells = append(cells, rowCells)
		})
		return false
	})

	if len(cells) < 2 {
		return internal.RawTable{}, ErrEmptyInput
	}
	return tableFromCells(cells, internal.SourceHTMLTable)
}
