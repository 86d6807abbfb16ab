package bridge

import "sync"

// nopLock is the interaction lock used when no listener runs. Its methods do nothing.
type nopLock struct{}

func (nopLock) Lock()   {}
func (nopLock) Unlock() {}

// NewInteractionLock returns the lock guarding camera and drag state. When the bridge is
// disabled only the render goroutine touches that state and the returned lock is a no-op.
//
// Parameters:
//   - bridgeEnabled: whether a listener may mutate interaction state
//
// Returns:
//   - sync.Locker: a mutex, or a no-op lock
func NewInteractionLock(bridgeEnabled bool) sync.Locker {
	if bridgeEnabled {
		return &sync.Mutex{}
	}
	return nopLock{}
}
