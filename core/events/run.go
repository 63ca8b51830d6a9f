package events

import "github.com/FilipeDoria/genetic-load-manager/core/model"

// RunEvent is published when an optimization run completes.
type RunEvent struct {
	Result model.RunResult
}
