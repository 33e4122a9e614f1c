package state

import "time"

const (
	// DefaultInfinity is the "no link" sentinel used when a topology does not set one.
	DefaultInfinity = Cost(999)
)

var (
	DefaultInboxSize      = 128
	DefaultLatency        = time.Millisecond * 2
	DefaultJitter         = time.Millisecond * 3
	DispatchWarnThreshold = time.Millisecond * 4
	QuiescencePollDelay   = time.Millisecond * 5
	QuiescenceTimeout     = time.Second * 30
	TraceBufferSize       = 1024
)
