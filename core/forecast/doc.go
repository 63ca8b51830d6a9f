// Package forecast provides interfaces for sourcing the rolling-horizon
// inputs the optimizer consumes: solar production, tariff prices, base
// load and battery state of charge. Providers assemble these series into
// a single snapshot so a run always sees a consistent view.
package forecast
