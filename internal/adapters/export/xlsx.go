// Package export renders route summaries as spreadsheets.
package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/samirrijal/placeroute/internal/core/domain"
)

// SheetName is the worksheet holding the route.
const SheetName = "Route"

// ContentTypeXLSX is the MIME type of the written workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []interface{}{"#", "Name", "Longitude", "Latitude", "Leg (m)", "Cumulative (m)"}

// WriteRoute writes one row per place in visiting order followed by a total
// row. The leg column holds the distance from the previous place; a closed
// route gets an extra row back to the first place.
func WriteRoute(w io.Writer, summary domain.RouteSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	rowNum := 2
	cumulative := 0.0
	writeRow := func(seq int, p domain.Place, leg float64) error {
		cumulative += leg
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		rowNum++
		return sw.SetRow(cell, []interface{}{seq, p.Name, p.Longitude, p.Latitude, leg, cumulative})
	}

	for i, p := range summary.Places {
		leg := 0.0
		if i > 0 && i-1 < len(summary.Legs) {
			leg = summary.Legs[i-1].DistanceMeters
		}
		if err := writeRow(i+1, p, leg); err != nil {
			return err
		}
	}
	if summary.Closed && len(summary.Places) > 1 && len(summary.Legs) == len(summary.Places) {
		back := summary.Legs[len(summary.Legs)-1]
		if err := writeRow(len(summary.Places)+1, back.To, back.DistanceMeters); err != nil {
			return err
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, []interface{}{"Total", nil, nil, nil, nil, summary.TotalMeters}); err != nil {
		return err
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	_, err = f.WriteTo(w)
	return err
}
