package audit

import (
	"context"
	"errors"
)

type fanoutSink struct {
	sinks []Sink
}

// Fanout returns a sink that appends to every given sink, joining errors so
// one failing backend does not hide the others.
func Fanout(sinks ...Sink) Sink {
	return &fanoutSink{sinks: sinks}
}

func (f *fanoutSink) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
