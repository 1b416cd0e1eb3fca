// Package countdown splits the time left until the festival into display units.
package countdown

import (
	"fmt"
	"time"
)

// Remaining is the time left, floored to whole seconds.
type Remaining struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// Until computes the time from now to target. A target in the past, or
// exactly now, yields zeros with Expired set.
func Until(now, target time.Time) Remaining {
	diff := target.Sub(now)
	if diff <= 0 {
		return Remaining{Expired: true}
	}

	total := int64(diff / time.Second)
	return Remaining{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

// Duration converts back to a time.Duration.
func (r Remaining) Duration() time.Duration {
	return time.Duration(r.Days)*24*time.Hour +
		time.Duration(r.Hours)*time.Hour +
		time.Duration(r.Minutes)*time.Minute +
		time.Duration(r.Seconds)*time.Second
}

func (r Remaining) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", r.Days, r.Hours, r.Minutes, r.Seconds)
}
