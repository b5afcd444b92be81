package stream

import (
	"github.com/streamvault/yieldstream/errors"
)

// stream reserves 1100 ~ 1119.

// ErrLossTolerance is returned when opening a stream would socialize more
// existing debt onto the new principal than the caller tolerates.
var ErrLossTolerance = errors.Register(1100, "loss tolerance exceeded")

// ErrNoYield is returned when a claim is attempted while the receiver
// account holds no claimable surplus.
var ErrNoYield = errors.Register(1101, "no yield")

// ErrSelfStream is returned when a stream owner tries to stream to
// themselves.
var ErrSelfStream = errors.Register(1102, "cannot stream to self")
