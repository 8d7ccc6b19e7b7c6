package handlers

import (
	"context"
	"errors"
)

// ReferenceProbe fails health checks while the facility registry is empty.
// Missing pattern data is tolerated since the engine falls back to neutral
// weights.
type ReferenceProbe struct {
	lots interface{ Len() int }
}

// NewReferenceProbe creates a probe over the registry.
func NewReferenceProbe(lots interface{ Len() int }) *ReferenceProbe {
	return &ReferenceProbe{lots: lots}
}

// Name identifies the probe in health output.
func (p *ReferenceProbe) Name() string { return "reference_data" }

// Check reports an error when no facilities are loaded.
func (p *ReferenceProbe) Check(context.Context) error {
	if p.lots.Len() == 0 {
		return errors.New("no parking lots loaded")
	}
	return nil
}
