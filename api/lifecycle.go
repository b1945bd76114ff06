package main

import "sync/atomic"

type phase int32

const (
	phaseStarting phase = iota
	phaseReady
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseStarting:
		return "starting"
	case phaseReady:
		return "ready"
	case phaseFailed:
		return "failed"
	}
	return "unknown"
}

// lifecycle tracks whether the backing store is usable. The server accepts
// connections before the database connection is established; API handlers are
// gated on phaseReady by the requireReady middleware.
type lifecycle struct {
	state atomic.Int32
}

func (l *lifecycle) current() phase {
	return phase(l.state.Load())
}

func (l *lifecycle) transition(p phase) {
	l.state.Store(int32(p))
}
