// Package sink provides destinations for redacted output.
package sink

import (
	"io"
	"sync"
)

// FanOut writes every chunk to all of its writers in parallel.
type FanOut struct {
	writers []io.Writer
}

// NewFanOut returns a writer that duplicates writes to writers. Nil writers
// are skipped.
func NewFanOut(writers ...io.Writer) *FanOut {
	f := &FanOut{}
	for _, w := range writers {
		if w != nil {
			f.writers = append(f.writers, w)
		}
	}
	return f
}

// Write sends p to every writer and returns the first error found.
func (f *FanOut) Write(p []byte) (int, error) {
	if len(f.writers) == 1 {
		return f.writers[0].Write(p)
	}
	var wg sync.WaitGroup
	errs := make([]error, len(f.writers))
	for i, w := range f.writers {
		wg.Add(1)
		go func(idx int, w io.Writer) {
			defer wg.Done()
			n, err := w.Write(p)
			if err == nil && n < len(p) {
				err = io.ErrShortWrite
			}
			errs[idx] = err
		}(i, w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
