package wholesalemarket

import (
	"fmt"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/connectors"
)

// WithStartDate sets the first day of the queried range.
func WithStartDate(startDate time.Time) connectors.Option {
	return func(c connectors.Client) error {
		if w, ok := c.(*Client); ok {
			w.startDate = startDate
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithStartDate", "wholesale_market")
	}
}

// WithEndDate sets the last day of the queried range.
func WithEndDate(endDate time.Time) connectors.Option {
	return func(c connectors.Client) error {
		if w, ok := c.(*Client); ok {
			w.endDate = endDate
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithEndDate", "wholesale_market")
	}
}
