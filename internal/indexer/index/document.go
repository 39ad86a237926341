package index

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state attached to a document at insertion.
type Status int

const (
	StatusActual Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = [...]string{"ACTUAL", "IRRELEVANT", "BANNED", "REMOVED"}

func (s Status) String() string {
	if s.Valid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) Valid() bool {
	return s >= StatusActual && s <= StatusRemoved
}

// ParseStatus accepts a status name in any case.
func ParseStatus(name string) (Status, bool) {
	for i, n := range statusNames {
		if strings.EqualFold(n, name) {
			return Status(i), true
		}
	}
	return 0, false
}

// DocumentData is what the store keeps per document id.
type DocumentData struct {
	Rating int
	Status Status
}

// ComputeAverageRating returns the integer average of ratings, truncated
// toward zero, or 0 when there are none.
func ComputeAverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
