package wallet

import (
	"time"
)

// Default readiness-detection schedule for legacy wallets whose provider may
// be injected after the page scripts run.
const (
	DefaultDetectAttempts = 5
	DefaultDetectInterval = 500 * time.Millisecond
)

// Detector runs bounded readiness polls for legacy wallet descriptors.
// It never blocks session operations and session operations never await it.
type Detector struct {
	attempts int
	interval time.Duration
}

// NewDetector creates a detector with the given attempt budget and polling
// interval; non-positive values fall back to the defaults.
func NewDetector(attempts int, interval time.Duration) *Detector {
	if attempts <= 0 {
		attempts = DefaultDetectAttempts
	}
	if interval <= 0 {
		interval = DefaultDetectInterval
	}
	return &Detector{attempts: attempts, interval: interval}
}

// Watch polls the descriptor's DetectProvider capability on its own
// goroutine. On the first successful probe it flips NotDetected to Installed
// and invokes onDetected, then stops. It also stops after exhausting the
// attempt budget. Descriptors that are already detectable, already resolved,
// or lack a probe are left untouched.
func (d *Detector) Watch(desc *Descriptor, onDetected func(*Descriptor)) {
	if desc == nil || desc.State() != ReadyStateNotDetected || desc.Capabilities.DetectProvider == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for attempt := 0; attempt < d.attempts; attempt++ {
			if desc.Capabilities.DetectProvider() {
				// Atomic store: session guards read the state while
				// this poll runs.
				desc.SetState(ReadyStateInstalled)
				if onDetected != nil {
					onDetected(desc)
				}
				return
			}
			<-ticker.C
		}
	}()
}
