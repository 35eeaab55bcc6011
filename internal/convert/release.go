package convert

import (
	"errors"
	"fmt"
	"io"
)

// releaser is a stack of acquired resources. Slots are pushed only after
// acquisition succeeds, so a step that never acquired anything leaves
// nothing to release.
type releaser struct {
	slots []slot
}

type slot struct {
	name string
	c    io.Closer
}

func (r *releaser) push(name string, c io.Closer) {
	r.slots = append(r.slots, slot{name: name, c: c})
}

// release closes every slot in reverse acquisition order and empties the
// stack, so a second call does nothing.
func (r *releaser) release(log Logger, verbose bool) error {
	var errs []error
	for i := len(r.slots) - 1; i >= 0; i-- {
		s := r.slots[i]
		if err := s.c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", s.name, err))
			continue
		}
		log.Debug(verbose, "Released %s", s.name)
	}
	r.slots = nil
	return errors.Join(errs...)
}
