package service

import (
	"context"
	"errors"

	"github.com/khsolheim/tms-mobile-sync/models"
)

// unsupportedPlatform is the prober/challenger pair for deployments without
// a biometric surface (headless agent, CI). The probe reports no capability,
// so the gate stays in the unavailable state and never prompts.
type unsupportedPlatform struct{}

// NewUnsupportedPlatform returns a platform implementation reporting no
// biometric capability.
func NewUnsupportedPlatform() (BiometricProber, BiometricChallenger) {
	p := unsupportedPlatform{}
	return p, p
}

func (unsupportedPlatform) Probe(_ context.Context) (models.BiometricCapability, error) {
	return models.BiometricCapability{Available: false}, nil
}

func (unsupportedPlatform) Challenge(_ context.Context, _ models.ChallengeOptions) (string, error) {
	return "", errors.New("biometric challenge not supported on this platform")
}
