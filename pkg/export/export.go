package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
)

// WriteJSON writes the full run result, plan included, to w in JSON format.
func WriteJSON(w io.Writer, res model.RunResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(res)
}

// WriteCSV writes the dispatch plan to w in CSV format with one row per slot.
// Offsets are relative to the first slot of the plan.
func WriteCSV(w io.Writer, res model.RunResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"slot", "offset", "battery_kw", "grid_kw", "soc_start", "soc_end"}); err != nil {
		return err
	}
	p := res.Plan
	for i := 0; i < p.Horizon(); i++ {
		rec := []string{
			strconv.Itoa(i),
			(time.Duration(i) * p.SlotDuration).String(),
			formatFloat(p.BatteryKW[i]),
			formatFloat(p.GridKW[i]),
			formatFloat(p.SoC[i]),
			formatFloat(p.SoC[i+1]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
