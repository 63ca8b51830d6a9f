package wholesalemarket

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/FilipeDoria/genetic-load-manager/connectors"
)

// Response mirrors the france_power_exchanges payload. Prices on the wire
// are EUR/MWh.
type Response struct {
	FrancePowerExchanges []struct {
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		UpdatedDate string `json:"updated_date"`
		Values      []struct {
			StartDate string  `json:"start_date"`
			EndDate   string  `json:"end_date"`
			Value     float64 `json:"value"`
			Price     float64 `json:"price"`
		} `json:"values"`
	} `json:"france_power_exchanges"`
}

// PricePoints converts the payload into chronological intervals priced in
// EUR/kWh, the unit the optimizer works with.
func (r *Response) PricePoints() ([]connectors.PricePoint, error) {
	var points []connectors.PricePoint
	for _, exchange := range r.FrancePowerExchanges {
		for _, v := range exchange.Values {
			start, err := time.Parse(time.RFC3339, v.StartDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start date: %w", err)
			}
			end, err := time.Parse(time.RFC3339, v.EndDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end date: %w", err)
			}
			points = append(points, connectors.PricePoint{
				Start:       start,
				End:         end,
				PricePerKWh: v.Price / 1000,
			})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Start.Before(points[j].Start) })
	return points, nil
}

// PriceChartHTML renders the raw EUR/MWh prices as a standalone HTML line
// chart.
func (r *Response) PriceChartHTML() (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Day-Ahead Prices"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price (EUR/MWh)"}),
	)

	var xAxis []string
	var yAxis []opts.LineData
	for _, exchange := range r.FrancePowerExchanges {
		for _, v := range exchange.Values {
			parsedTime, err := time.Parse(time.RFC3339, v.StartDate)
			if err != nil {
				return "", fmt.Errorf("failed to parse time: %w", err)
			}
			xAxis = append(xAxis, parsedTime.Format("2006-01-02 15:04"))
			yAxis = append(yAxis, opts.LineData{Value: v.Price})
		}
	}

	line.SetXAxis(xAxis).AddSeries("Price", yAxis)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.String(), nil
}
