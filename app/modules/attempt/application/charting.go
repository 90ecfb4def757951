package attemptservice

import (
	"bytes"
	"time"

	attemptdomain "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette colours the ledger chart.
type ChartPalette struct {
	Background drawing.Color
	TextColor  drawing.Color
	Lines      map[attemptdomain.AverageKind]drawing.Color
}

// DefaultPalette is used when the service has no palette configured.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorWhite,
	TextColor:  drawing.ColorFromHex("333333"),
	Lines: map[attemptdomain.AverageKind]drawing.Color{
		attemptdomain.KindSingle: drawing.ColorFromHex("1f77b4"),
		attemptdomain.KindAo5:    drawing.ColorFromHex("ff7f0e"),
		attemptdomain.KindAo12:   drawing.ColorFromHex("2ca02c"),
		attemptdomain.KindAo100:  drawing.ColorFromHex("d62728"),
	},
}

const noLedgerMessage = "No records yet"

// GenerateLedgerChart draws one line per category: x is when the
// record attempt was performed, y is the record in seconds.
func GenerateLedgerChart(ledger []attemptdomain.BestRecord, palette ChartPalette) ([]byte, error) {
	if len(ledger) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	byKind := make(map[attemptdomain.AverageKind]*chart.TimeSeries, len(attemptdomain.Kinds))
	minX, maxX := ledger[0].PerformedAt, ledger[0].PerformedAt
	minY, maxY := seconds(ledger[0].Milliseconds), seconds(ledger[0].Milliseconds)

	for _, rec := range ledger {
		s, ok := byKind[rec.Category]
		if !ok {
			s = &chart.TimeSeries{
				Name: string(rec.Category),
				Style: chart.Style{
					StrokeColor: palette.Lines[rec.Category],
					StrokeWidth: 2,
					DotWidth:    3,
					DotColor:    palette.Lines[rec.Category],
				},
			}
			byKind[rec.Category] = s
		}
		y := seconds(rec.Milliseconds)
		s.XValues = append(s.XValues, rec.PerformedAt)
		s.YValues = append(s.YValues, y)

		if rec.PerformedAt.Before(minX) {
			minX = rec.PerformedAt
		}
		if rec.PerformedAt.After(maxX) {
			maxX = rec.PerformedAt
		}
		minY, maxY = min(minY, y), max(maxY, y)
	}

	series := make([]chart.Series, 0, len(byKind))
	for _, kind := range attemptdomain.Kinds {
		if s, ok := byKind[kind]; ok {
			series = append(series, *s)
		}
	}

	// go-chart rejects zero-width ranges, which a single record produces.
	if !maxX.After(minX) {
		minX, maxX = minX.Add(-time.Hour), maxX.Add(time.Hour)
	}
	pad := (maxY - minY) * 0.05
	if pad == 0 {
		pad = 1
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Performed",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style:          chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(minX),
				Max: chart.TimeToFloat64(maxX),
			},
		},
		YAxis: chart.YAxis{
			Name:  "Seconds",
			Style: chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{
				Min: max(minY-pad, 0.001),
				Max: maxY + pad,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func seconds(ms int) float64 {
	return float64(ms) / 1000
}

// renderNoDataPlaceholder draws straight onto a renderer because chart.Chart
// refuses to render without a series.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(palette.Background)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(palette.TextColor)
	r.SetFontSize(12.0)
	tb := r.MeasureText(noLedgerMessage)
	r.Text(noLedgerMessage, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
