package production

import (
	"sort"
	"time"
)

// RecordedTarget is a requested output as saved with a calculation
type RecordedTarget struct {
	Kind string  `json:"kind" yaml:"kind"`
	ID   string  `json:"id" yaml:"id"`
	Rate float64 `json:"rate" yaml:"rate"`
}

// RecordedItem is one line of a saved calculation's item totals
type RecordedItem struct {
	Item     string  `json:"item" yaml:"item"`
	Rate     float64 `json:"rate" yaml:"rate"`
	Machines float64 `json:"machines" yaml:"machines"`
	Raw      bool    `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// CalculationRecord is a named calculation kept for later review. Only the
// targets and the item totals are stored; trees are rebuilt on demand.
type CalculationRecord struct {
	ID         string           `json:"id" yaml:"id"`
	Name       string           `json:"name" yaml:"name"`
	Targets    []RecordedTarget `json:"targets" yaml:"targets"`
	Items      []RecordedItem   `json:"items" yaml:"items"`
	EnergyDraw float64          `json:"energy_draw" yaml:"energy_draw"`
	CreatedAt  time.Time        `json:"created_at" yaml:"created_at"`
}

// SummarizeTotals flattens item rollups into recorded lines, sorted by item id
func SummarizeTotals(totals *Totals) []RecordedItem {
	items := make([]RecordedItem, 0, len(totals.ByItem))
	for _, r := range totals.ByItem {
		if r.Kind() == RecipeBucket {
			continue
		}
		items = append(items, RecordedItem{
			Item:     r.Item(),
			Rate:     finite(r.Rate()),
			Machines: finite(r.MachineCount()),
			Raw:      len(r.parts) == 0,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Item < items[j].Item })
	return items
}
