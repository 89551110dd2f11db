package availability

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"verleih/pkg/model"
)

var (
	ErrInvalidWindow    = errors.New("window end must be after window start")
	ErrCapacityExceeded = errors.New("requested quantity exceeds availability")
)

// Reservation is a claim of Quantity units of one item over [Start, End).
type Reservation struct {
	RentalID string             `json:"rental_id"`
	ItemID   string             `json:"item_id"`
	Start    time.Time          `json:"start"`
	End      time.Time          `json:"end"`
	Quantity int                `json:"quantity"`
	Status   model.RentalStatus `json:"status"`
}

// Interval is a maximal span of the window with constant availability.
// Available is not clamped: a negative value means the span is overbooked.
type Interval struct {
	Begin     time.Time `json:"begin"`
	End       time.Time `json:"end"`
	Available int       `json:"available"`
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s) -> %d", i.Begin.Format(time.RFC3339), i.End.Format(time.RFC3339), i.Available)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share a non-empty span.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// SplitIntervals partitions [windowStart, windowEnd) at every point where one
// of the reservations starts or ends, and subtracts each reservation's
// quantity from every sub-interval it overlaps.
//
// The caller is responsible for passing only reservations of the item in
// question and with a conflicting status. Reservations outside the window are
// ignored. An inverted or empty window fails with ErrInvalidWindow.
func SplitIntervals(windowStart, windowEnd time.Time, quantity int, reservations []Reservation) ([]Interval, error) {
	if !windowEnd.After(windowStart) {
		return nil, fmt.Errorf("%w: [%s, %s)", ErrInvalidWindow,
			windowStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339))
	}

	relevant := make([]Reservation, 0, len(reservations))
	borders := make([]time.Time, 0, 2*len(reservations))
	for _, r := range reservations {
		if !Overlaps(r.Start, r.End, windowStart, windowEnd) {
			continue
		}
		relevant = append(relevant, r)
		if r.Start.After(windowStart) {
			borders = append(borders, r.Start)
		}
		if r.End.Before(windowEnd) {
			borders = append(borders, r.End)
		}
	}

	slices.SortFunc(borders, func(a, b time.Time) int { return a.Compare(b) })

	// borders lie strictly inside the window, so only duplicates need collapsing
	points := make([]time.Time, 0, len(borders)+2)
	points = append(points, windowStart)
	for _, b := range borders {
		if b.Equal(points[len(points)-1]) {
			continue
		}
		points = append(points, b)
	}
	points = append(points, windowEnd)

	intervals := make([]Interval, len(points)-1)
	for i := range intervals {
		intervals[i] = Interval{Begin: points[i], End: points[i+1], Available: quantity}
	}

	for _, r := range relevant {
		for i := range intervals {
			if Overlaps(r.Start, r.End, intervals[i].Begin, intervals[i].End) {
				intervals[i].Available -= r.Quantity
			}
		}
	}

	return intervals, nil
}

// MinimumAvailability is the number of units that can be booked for the whole
// span covered by intervals. It returns 0 for an empty list.
func MinimumAvailability(intervals []Interval) int {
	if len(intervals) == 0 {
		return 0
	}
	minimum := intervals[0].Available
	for _, in := range intervals[1:] {
		minimum = min(minimum, in.Available)
	}
	return minimum
}

// CheckCapacity fails with ErrCapacityExceeded when requested units are not
// free during every interval.
func CheckCapacity(requested int, intervals []Interval) error {
	available := MinimumAvailability(intervals)
	if requested > available {
		return fmt.Errorf("%w: requested %d, available %d", ErrCapacityExceeded, requested, available)
	}
	return nil
}
