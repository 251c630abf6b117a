package comparison

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownStatus = errors.New("unknown comparison status")

// Status is the relation of a head commit to a base branch, as reported by
// the hosting service when comparing base...head.
type Status int

const (
	Ahead Status = iota
	Behind
	Diverged
	Identical
)

var statusNames = map[Status]string{
	Ahead:     "AHEAD",
	Behind:    "BEHIND",
	Diverged:  "DIVERGED",
	Identical: "IDENTICAL",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

// Included reports whether the head commit is already part of the base
// branch.
func (s Status) Included() bool {
	return s == Behind || s == Identical
}

func Parse(s string) (Status, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range statusNames {
		if name == upper {
			return status, nil
		}
	}

	return 0, errors.Wrapf(ErrUnknownStatus, "%q", s)
}
