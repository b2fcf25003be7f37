// Package output provides utilities for formatting and displaying calculator
// results.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fincalcs/calc-engine/internal/scenario"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []*scenario.Result) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		name := result.Name
		if name == "" {
			name = result.Kind
		}
		fmt.Printf("--- Results for %s ---\n", name)
		for _, m := range result.Metrics {
			switch m.Unit {
			case "USD":
				v, _ := m.Value.Float64()
				_, _ = p.Printf("%-36s $%.2f\n", m.Label, v)
			case "%":
				fmt.Printf("%-36s %s%%\n", m.Label, m.Value)
			default:
				fmt.Printf("%-36s %s %s\n", m.Label, m.Value, m.Unit)
			}
		}
		for _, note := range result.Notes {
			fmt.Printf("note: %s\n", note)
		}
		if len(result.Schedule) > 0 {
			fmt.Printf("\nPeriod | Payment    | Principal  | Interest   | Fee       | Balance\n")
			fmt.Printf("______ | __________ | __________ | __________ | _________ | __________\n")
			for _, e := range result.Schedule {
				fmt.Printf("%6d | %10s | %10s | %10s | %9s | %10s\n",
					e.Period, e.Payment, e.Principal, e.Interest, e.AncillaryFee, e.ClosingBalance)
			}
		}
		if i < len(results)-1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format. Metrics come first,
// then schedule rows when a schedule is present.
func CsvFormat(results []*scenario.Result) {
	fmt.Printf("\"scenario\",\"metric\",\"value\",\"unit\"\n")
	for _, result := range results {
		name := result.Name
		if name == "" {
			name = result.Kind
		}
		for _, m := range result.Metrics {
			fmt.Printf("%q,%q,%q,%q\n", name, m.Label, m.Value.String(), m.Unit)
		}
		if len(result.Notes) > 0 {
			fmt.Printf("%q,%q,%q,%q\n", name, "notes", strings.Join(result.Notes, "; "), "")
		}
	}
	for _, result := range results {
		if len(result.Schedule) == 0 {
			continue
		}
		name := result.Name
		if name == "" {
			name = result.Kind
		}
		fmt.Printf("\n\"scenario\",\"period\",\"payment\",\"principal\",\"interest\",\"fee\",\"balance\"\n")
		for _, e := range result.Schedule {
			fmt.Printf("%q,%d,%q,%q,%q,%q,%q\n",
				name, e.Period, e.Payment.String(), e.Principal.String(),
				e.Interest.String(), e.AncillaryFee.String(), e.ClosingBalance.String())
		}
	}
}

// JSONFormat outputs the results as indented JSON.
func JSONFormat(results []*scenario.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
