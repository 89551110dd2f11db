package availability

import "time"

// ChartPoint is one vertex of a step chart of availability over time.
type ChartPoint struct {
	X time.Time `json:"x"`
	Y int       `json:"y"`
}

// ChartPoints emits the begin and end vertex of every interval so a plain
// line chart draws flat steps.
func ChartPoints(intervals []Interval) []ChartPoint {
	points := make([]ChartPoint, 0, 2*len(intervals))
	for _, in := range intervals {
		points = append(points,
			ChartPoint{X: in.Begin, Y: in.Available},
			ChartPoint{X: in.End, Y: in.Available},
		)
	}
	return points
}
