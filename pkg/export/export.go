package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/bessopt/core/model"
)

// WriteJSON writes the full optimization result to w in indented JSON.
func WriteJSON(w io.Writer, res *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes the dispatch schedule to w, one row per interval.
func WriteCSV(w io.Writer, intervals []model.Interval) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "operation", "price", "grid_mwh", "cash_flow", "soc_mwh", "soc_frac"}); err != nil {
		return err
	}
	for _, iv := range intervals {
		rec := []string{
			strconv.Itoa(iv.Index),
			iv.Op.String(),
			fmtFloat(iv.Price),
			fmtFloat(iv.GridMWh),
			fmtFloat(iv.CashFlow),
			fmtFloat(iv.SocMWh),
			fmtFloat(iv.SocFrac),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
