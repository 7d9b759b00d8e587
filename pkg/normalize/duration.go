package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrInvalidDuration is returned for text that is not an ISO 8601 duration
// of the form P[nW][nD][T[nH][nM][n[.f]S]].
var ErrInvalidDuration = errors.New("invalid ISO 8601 duration")

type durationSegment struct {
	unit     byte
	d        time.Duration
	timePart bool
}

// Segments in the only order they may appear. Years and months are
// rejected because their length is calendar dependent.
var durationSegments = []durationSegment{
	{'W', 7 * 24 * time.Hour, false},
	{'D', 24 * time.Hour, false},
	{'H', time.Hour, true},
	{'M', time.Minute, true},
	{'S', time.Second, true},
}

// ParseDuration parses an ISO 8601 duration such as "PT1H2M3S" or "P1DT30S".
// Only the seconds component may carry a fraction.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	rest := s[1:]
	next := 0
	inTime := false
	sawSegment := false
	var total time.Duration

	for len(rest) > 0 {
		if rest[0] == 'T' {
			if inTime || len(rest) == 1 {
				return 0, fmt.Errorf("%w: %q: misplaced 'T'", ErrInvalidDuration, s)
			}
			inTime = true
			rest = rest[1:]
			continue
		}

		i := 0
		sawDecimal := false
		for ; i < len(rest); i++ {
			c := rest[i]
			if c >= '0' && c <= '9' {
				continue
			}
			if (c == '.' || c == ',') && !sawDecimal {
				sawDecimal = true
				continue
			}
			break
		}
		if i == 0 || i == len(rest) {
			return 0, fmt.Errorf("%w: %q: expected number and designator", ErrInvalidDuration, s)
		}

		unit := rest[i]
		seg := -1
		for j := next; j < len(durationSegments); j++ {
			if durationSegments[j].unit == unit && durationSegments[j].timePart == inTime {
				seg = j
				break
			}
		}
		if seg < 0 {
			return 0, fmt.Errorf("%w: %q: unexpected '%c'", ErrInvalidDuration, s, unit)
		}
		if sawDecimal && unit != 'S' {
			return 0, fmt.Errorf("%w: %q: fractional '%c'", ErrInvalidDuration, s, unit)
		}

		num := rest[:i]
		if sawDecimal {
			num = replaceComma(num)
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, s, err)
		}

		fpart := f * float64(durationSegments[seg].d)
		if fpart >= 1<<63 {
			return 0, fmt.Errorf("%w: %q: out of range", ErrInvalidDuration, s)
		}
		part := time.Duration(fpart)
		if total > math.MaxInt64-part {
			return 0, fmt.Errorf("%w: %q: out of range", ErrInvalidDuration, s)
		}
		total += part
		next = seg + 1
		sawSegment = true
		rest = rest[i+1:]
	}

	if !sawSegment {
		return 0, fmt.Errorf("%w: %q: no components", ErrInvalidDuration, s)
	}
	return total, nil
}

func replaceComma(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c == ',' {
			b[i] = '.'
		}
	}
	return string(b)
}

// DurationSeconds parses an ISO 8601 duration into whole seconds,
// truncating any fraction.
func DurationSeconds(s string) (int64, error) {
	d, err := ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return int64(d / time.Second), nil
}
