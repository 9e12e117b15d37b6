package dates

import "fmt"

// Selector is an ordered set of ranges used to filter ledger entries.
// The zero value selects every date.
type Selector struct {
	Ranges []Range
}

// NewSelector builds a selector from date arguments. Any single invalid
// argument fails the whole construction, naming the offending argument.
// An empty argument list yields a selector that matches everything.
func NewSelector(args []string) (*Selector, error) {
	s := &Selector{}
	for _, arg := range args {
		r, err := ParseArg(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid date argument %q: %w", arg, err)
		}
		s.Ranges = append(s.Ranges, r)
	}
	return s, nil
}

// Selected reports whether the selector covers date. An empty selector
// covers every date.
func (s *Selector) Selected(date Date) bool {
	if len(s.Ranges) == 0 {
		return true
	}
	for _, r := range s.Ranges {
		if r.Contains(date) {
			return true
		}
	}
	return false
}
