package alerting

import (
	"context"
	"errors"
	"fmt"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
)

// Fanout delivers each alert to every dispatcher, in order. One failing
// dispatcher does not stop the others; all failures are joined.
type Fanout []monitor.Dispatcher

func (f Fanout) Dispatch(ctx context.Context, alert monitor.Alert) error {
	var errs []error
	for i, d := range f {
		if d == nil {
			continue
		}
		if err := d.Dispatch(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher %d (%T): %w", i, d, err))
		}
	}
	return errors.Join(errs...)
}
