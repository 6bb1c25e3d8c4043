package allocation

import (
	"database/sql/driver"
	"fmt"
)

// Status is the reservation lifecycle state. The set is closed: parsing,
// scanning and storing all reject values outside the five constants below.
type Status string

const (
	StatusRequested  Status = "requested"
	StatusAllocated  Status = "allocated"
	StatusCheckedOut Status = "checked-out"
	StatusInUse      Status = "in-use"
	StatusReturned   Status = "returned"
)

// statusRank orders the workflow: requested → allocated → checked-out → in-use → returned.
var statusRank = map[Status]int{
	StatusRequested:  0,
	StatusAllocated:  1,
	StatusCheckedOut: 2,
	StatusInUse:      3,
	StatusReturned:   4,
}

// ActiveStatuses are the states that consume shared stock.
var ActiveStatuses = []Status{StatusAllocated, StatusCheckedOut, StatusInUse}

// ParseStatus validates a raw string against the closed status set.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusRank[st]; !ok {
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the five defined states.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the position of s in the workflow order.
func (s Status) Rank() int {
	return statusRank[s]
}

// Active reports whether s consumes stock (allocated, checked-out, in-use).
func (s Status) Active() bool {
	switch s {
	case StatusAllocated, StatusCheckedOut, StatusInUse:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusReturned
}

func (s Status) String() string {
	return string(s)
}

// Value implements driver.Valuer; unknown statuses never reach the DB.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot store unknown reservation status %q", string(s))
	}
	return string(s), nil
}

// Scan implements sql.Scanner; unknown stored values fail loudly.
func (s *Status) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
