package sink

import (
	"errors"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
)

// Multi saves to every sink in order and returns the first sink's location.
// All sinks are attempted; their errors are joined.
type Multi []Sink

// Save implements Sink.
func (m Multi) Save(t record.Table, prefix string) (string, error) {
	var (
		first string
		errs  []error
	)
	for i, s := range m {
		loc, err := s.Save(t, prefix)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if i == 0 {
			first = loc
		}
	}
	return first, errors.Join(errs...)
}
