package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khsolheim/tms-mobile-sync/internal/config"
	"github.com/khsolheim/tms-mobile-sync/internal/crypto"
	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/models"
)

// fakePlatform is a scriptable prober/challenger pair.
type fakePlatform struct {
	capability   models.BiometricCapability
	probeErr     error
	challengeErr error
	panicOnCall  bool
}

func (f *fakePlatform) Probe(_ context.Context) (models.BiometricCapability, error) {
	return f.capability, f.probeErr
}

func (f *fakePlatform) Challenge(_ context.Context, _ models.ChallengeOptions) (string, error) {
	if f.panicOnCall {
		panic("bridge disconnected")
	}
	if f.challengeErr != nil {
		return "", f.challengeErr
	}
	return "face", nil
}

func testAgentApp() config.AgentApp {
	return config.AgentApp{
		DeviceID:      "device-1",
		DeviceSecret:  "super-secret",
		TokenIssuer:   "tms-mobile-sync",
		TokenDuration: time.Hour,
	}
}

// fastKeyChain avoids paying the Argon2id cost in every test.
type fastKeyChain struct{}

func (fastKeyChain) GenerateSalt() ([]byte, error) { return []byte("0123456789abcdef"), nil }

func (fastKeyChain) DeriveSigningKey(deviceSecret string, salt []byte) []byte {
	return append([]byte(deviceSecret), salt...)
}

func newTestBiometric(t *testing.T, kv *fakeKV, platform *fakePlatform) *biometricService {
	t.Helper()
	svc := NewBiometricService(platform, platform, kv, fastKeyChain{}, testAgentApp(), logger.Nop()).(*biometricService)
	return svc
}

func enabledPlatform() *fakePlatform {
	return &fakePlatform{capability: models.BiometricCapability{Available: true, Enrolled: true, Type: "face"}}
}

func TestBiometricService_Availability(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		platform *fakePlatform
		enable   bool
		want     models.BiometricState
	}{
		{
			name:     "unavailable hardware",
			platform: &fakePlatform{},
			want:     models.StateUnavailable,
		},
		{
			name:     "probe error",
			platform: &fakePlatform{probeErr: errors.New("bridge error")},
			want:     models.StateUnavailable,
		},
		{
			name:     "available but not enrolled",
			platform: &fakePlatform{capability: models.BiometricCapability{Available: true}},
			want:     models.StateNotEnrolled,
		},
		{
			name:     "enrolled but not opted in",
			platform: enabledPlatform(),
			want:     models.StateEnrolled,
		},
		{
			name:     "enrolled and opted in",
			platform: enabledPlatform(),
			enable:   true,
			want:     models.StateEnabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestBiometric(t, newFakeKV(), tt.platform)
			if tt.enable {
				require.NoError(t, svc.Enable(ctx))
			}
			assert.Equal(t, tt.want, svc.Availability(ctx))
		})
	}
}

func TestBiometricService_Enable_RequiresEnrollment(t *testing.T) {
	svc := newTestBiometric(t, newFakeKV(), &fakePlatform{capability: models.BiometricCapability{Available: true}})
	assert.ErrorIs(t, svc.Enable(context.Background()), ErrBiometricsNotEnrolled)
}

func TestBiometricService_Enable_SurvivesRestart(t *testing.T) {
	kv := newFakeKV()
	ctx := context.Background()

	first := newTestBiometric(t, kv, enabledPlatform())
	require.NoError(t, first.Enable(ctx))

	second := newTestBiometric(t, kv, enabledPlatform())
	assert.Equal(t, models.StateEnabled, second.Availability(ctx))

	require.NoError(t, second.Disable(ctx))
	third := newTestBiometric(t, kv, enabledPlatform())
	assert.Equal(t, models.StateEnrolled, third.Availability(ctx))
}

func TestBiometricService_Authenticate_Unavailable(t *testing.T) {
	svc := newTestBiometric(t, newFakeKV(), &fakePlatform{})
	ctx := context.Background()

	result := svc.Authenticate(ctx, models.ChallengeOptions{})
	assert.False(t, result.Success)
	assert.Equal(t, "Biometric authentication not available", result.Error)

	// An unavailable probe is not an attempt: stats stay untouched.
	assert.Zero(t, svc.Stats(ctx).TotalAttempts)
}

func TestBiometricService_Authenticate_NotEnabled(t *testing.T) {
	svc := newTestBiometric(t, newFakeKV(), enabledPlatform())

	result := svc.Authenticate(context.Background(), models.ChallengeOptions{})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestBiometricService_Authenticate_Success(t *testing.T) {
	svc := newTestBiometric(t, newFakeKV(), enabledPlatform())
	ctx := context.Background()
	require.NoError(t, svc.Enable(ctx))

	result := svc.Authenticate(ctx, models.ChallengeOptions{Reason: "Unlock"})
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Details)
	assert.Equal(t, "face", result.Details.BiometricType)
	assert.Equal(t, "device-1", result.Details.DeviceID)
	assert.NotEmpty(t, result.SessionToken)

	stats := svc.Stats(ctx)
	assert.EqualValues(t, 1, stats.TotalAttempts)
	assert.EqualValues(t, 1, stats.SuccessfulAttempts)
	assert.Zero(t, stats.FailedAttempts)
	assert.False(t, stats.LastSuccessfulAuth.IsZero())
}

func TestBiometricService_Authenticate_ChallengeFailureRecorded(t *testing.T) {
	platform := enabledPlatform()
	platform.challengeErr = errors.New("user cancelled")
	svc := newTestBiometric(t, newFakeKV(), platform)
	ctx := context.Background()
	require.NoError(t, svc.Enable(ctx))

	result := svc.Authenticate(ctx, models.ChallengeOptions{})
	assert.False(t, result.Success)
	assert.Equal(t, "user cancelled", result.Error)

	stats := svc.Stats(ctx)
	assert.EqualValues(t, 1, stats.TotalAttempts)
	assert.EqualValues(t, 1, stats.FailedAttempts)
	assert.False(t, stats.LastFailedAuth.IsZero())
}

func TestBiometricService_Authenticate_PanicDoesNotEscape(t *testing.T) {
	platform := enabledPlatform()
	platform.panicOnCall = true
	svc := newTestBiometric(t, newFakeKV(), platform)
	ctx := context.Background()
	require.NoError(t, svc.Enable(ctx))

	var result models.BiometricAuthResult
	assert.NotPanics(t, func() {
		result = svc.Authenticate(ctx, models.ChallengeOptions{})
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "platform failure")
	assert.EqualValues(t, 1, svc.Stats(ctx).FailedAttempts)
}

func TestBiometricService_ResumeSession(t *testing.T) {
	svc := newTestBiometric(t, newFakeKV(), enabledPlatform())
	ctx := context.Background()
	require.NoError(t, svc.Enable(ctx))

	result := svc.Authenticate(ctx, models.ChallengeOptions{})
	require.True(t, result.Success)
	require.NotEmpty(t, result.SessionToken)

	assert.NoError(t, svc.ResumeSession(ctx, result.SessionToken))
	assert.ErrorIs(t, svc.ResumeSession(ctx, "not-a-token"), ErrInvalidSessionToken)
	assert.ErrorIs(t, svc.ResumeSession(ctx, result.SessionToken+"x"), ErrInvalidSessionToken)
}

func TestBiometricService_ResumeSession_ExpiredToken(t *testing.T) {
	svc := newTestBiometric(t, newFakeKV(), enabledPlatform())
	ctx := context.Background()
	require.NoError(t, svc.Enable(ctx))

	// Issue a token that is already past its expiry.
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	result := svc.Authenticate(ctx, models.ChallengeOptions{})
	require.True(t, result.Success)

	svc.now = time.Now
	assert.ErrorIs(t, svc.ResumeSession(ctx, result.SessionToken), ErrInvalidSessionToken)
}

func TestBiometricService_SaltPersistsAcrossRestarts(t *testing.T) {
	kv := newFakeKV()
	ctx := context.Background()

	first := newTestBiometric(t, kv, enabledPlatform())
	require.NoError(t, first.Enable(ctx))
	result := first.Authenticate(ctx, models.ChallengeOptions{})
	require.True(t, result.Success)

	// A restarted instance derives the same key and accepts the old token.
	second := newTestBiometric(t, kv, enabledPlatform())
	assert.NoError(t, second.ResumeSession(ctx, result.SessionToken))
}

func TestKeyChainService_DeterministicDerivation(t *testing.T) {
	kc := crypto.NewKeyChainService()

	salt, err := kc.GenerateSalt()
	require.NoError(t, err)
	require.Len(t, salt, 16)

	a := kc.DeriveSigningKey("secret", salt)
	b := kc.DeriveSigningKey("secret", salt)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, kc.DeriveSigningKey("other", salt))
}
