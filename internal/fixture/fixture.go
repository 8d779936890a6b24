package fixture

import (
	_ "embed"
)

//go:embed chart.json
var chart []byte

// ChartJSON is a small generated chart: ten notes over three levels, two of
// them out of order, one hold with a duration, and two vocal sections.
func ChartJSON() []byte {
	return append([]byte(nil), chart...)
}
