// Package events defines the optimization related events emitted on the
// event bus.
//
// Available event types:
//   - RunEvent: an optimization run completed and its result was stored
//   - SkipEvent: a scheduler tick was skipped and the previous plan kept
//   - PublishEvent: a plan was pushed to a downstream consumer
//   - TariffEvent: a tariff adjustment was accepted from a feed
package events
