package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Print writes the report in a line-oriented text form.
func Print(w io.Writer, r *Report) error {
	ids := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		ids = append(ids, fmt.Sprintf("%s=%s", e.Code, orNone(r.ItemIDs[e.Code])))
	}
	if _, err := fmt.Fprintf(w, "item_ids %s\n", strings.Join(ids, " ")); err != nil {
		return err
	}

	for _, e := range r.Entries {
		var err error
		switch e.Status {
		case StatusItemNotFound:
			_, err = fmt.Fprintf(w, "\n%s: %s\n", e.Code, StatusItemNotFound)
		case StatusNoStockRows:
			_, err = fmt.Fprintf(w, "\n%s: %s item_id=%s\n", e.Code, StatusNoStockRows, e.ItemID)
		default:
			err = printAggregate(w, e)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printAggregate(w io.Writer, e Entry) error {
	a := e.Aggregate
	_, err := fmt.Fprintf(w, "\n%s: rows=%d quantity_sum=%s available_sum=%s allocated_sum=%s total_quantity_sum=%s\n",
		e.Code, a.Rows, num(a.Quantity), num(a.Available), num(a.Allocated), num(a.Total))
	if err != nil {
		return err
	}

	sample := make([]string, 0, len(SampleKeys))
	for _, k := range SampleKeys {
		v, ok := a.Sample[k]
		if !ok {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			b = []byte(fmt.Sprint(v))
		}
		sample = append(sample, fmt.Sprintf("%s=%s", k, b))
	}
	if _, err := fmt.Fprintf(w, "sample_row %s\n", strings.Join(sample, " ")); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "all_keys %s\n", strings.Join(a.Keys, ","))
	return err
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
