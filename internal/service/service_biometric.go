// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/khsolheim/tms-mobile-sync/internal/config"
	"github.com/khsolheim/tms-mobile-sync/internal/crypto"
	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/store"
	"github.com/khsolheim/tms-mobile-sync/models"
)

const errBiometricsUnavailable = "Biometric authentication not available"

// biometricSettings is the persisted opt-in flag plus the salt the session
// signing key is derived from.
type biometricSettings struct {
	Enabled   bool   `json:"enabled"`
	TokenSalt []byte `json:"token_salt,omitempty"`
}

type biometricService struct {
	prober     BiometricProber
	challenger BiometricChallenger
	kv         store.KeyValueRepository
	keychain   crypto.KeyChainService
	logger     *logger.Logger
	cfg        config.AgentApp
	now        func() time.Time

	mu       sync.Mutex
	settings biometricSettings
}

// NewBiometricService constructs the biometric session gate. Opt-in state
// and the token salt are reloaded from storage so the gate survives
// restarts.
func NewBiometricService(
	prober BiometricProber,
	challenger BiometricChallenger,
	kv store.KeyValueRepository,
	keychain crypto.KeyChainService,
	cfg config.AgentApp,
	log *logger.Logger,
) BiometricService {
	s := &biometricService{
		prober:     prober,
		challenger: challenger,
		kv:         kv,
		keychain:   keychain,
		logger:     log,
		cfg:        cfg,
		now:        time.Now,
	}
	s.loadSettings(context.Background())
	return s
}

func (s *biometricService) loadSettings(ctx context.Context) {
	blob, err := s.kv.Get(ctx, store.KeyBiometricSettings)
	if errors.Is(err, store.ErrKeyNotFound) {
		return
	}
	if err != nil {
		s.logger.Err(err).Msg("load biometric settings")
		return
	}
	if err = json.Unmarshal(blob, &s.settings); err != nil {
		s.logger.Err(err).Msg("decode biometric settings")
	}
}

func (s *biometricService) persistSettings(ctx context.Context) error {
	blob, err := json.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("encode biometric settings: %w", err)
	}
	if err = s.kv.Put(ctx, store.KeyBiometricSettings, blob); err != nil {
		return fmt.Errorf("persist biometric settings: %w", err)
	}
	return nil
}

// Availability implements [BiometricService].
func (s *biometricService) Availability(ctx context.Context) models.BiometricState {
	capability, err := s.prober.Probe(ctx)
	if err != nil || !capability.Available {
		return models.StateUnavailable
	}
	if !capability.Enrolled {
		return models.StateNotEnrolled
	}

	s.mu.Lock()
	enabled := s.settings.Enabled
	s.mu.Unlock()
	if enabled {
		return models.StateEnabled
	}
	return models.StateEnrolled
}

// Enable implements [BiometricService].
func (s *biometricService) Enable(ctx context.Context) error {
	capability, err := s.prober.Probe(ctx)
	if err != nil {
		return fmt.Errorf("probe biometric capability: %w", err)
	}
	if !capability.Available || !capability.Enrolled {
		return ErrBiometricsNotEnrolled
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Enabled = true
	return s.persistSettings(ctx)
}

// Disable implements [BiometricService]. The gate returns to the enrolled
// state; enrollment itself belongs to the platform, not this service.
func (s *biometricService) Disable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Enabled = false
	return s.persistSettings(ctx)
}

// Authenticate implements [BiometricService]. All platform-layer errors and
// panics are mapped into the returned result; the caller never sees them as
// Go errors.
func (s *biometricService) Authenticate(ctx context.Context, opts models.ChallengeOptions) (result models.BiometricAuthResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("platform challenge panicked")
			result = models.BiometricAuthResult{Success: false, Error: fmt.Sprintf("platform failure: %v", r)}
			s.recordAttempt(ctx, false)
		}
	}()

	capability, err := s.prober.Probe(ctx)
	if err != nil || !capability.Available {
		return models.BiometricAuthResult{Success: false, Error: errBiometricsUnavailable}
	}

	s.mu.Lock()
	enabled := s.settings.Enabled
	s.mu.Unlock()
	if !enabled {
		return models.BiometricAuthResult{Success: false, Error: "biometric authentication not enabled"}
	}

	biometricType, err := s.challenger.Challenge(ctx, opts)
	if err != nil {
		s.recordAttempt(ctx, false)
		return models.BiometricAuthResult{Success: false, Error: err.Error()}
	}

	s.recordAttempt(ctx, true)

	details := &models.BiometricDetails{
		BiometricType: biometricType,
		Timestamp:     s.now(),
		DeviceID:      s.cfg.DeviceID,
	}

	token, err := s.issueSessionToken(ctx)
	if err != nil {
		// The challenge itself succeeded; report success without a
		// resumable session rather than failing the whole attempt.
		s.logger.Err(err).Msg("issue session token")
		return models.BiometricAuthResult{Success: true, Details: details}
	}

	return models.BiometricAuthResult{Success: true, Details: details, SessionToken: token}
}

// ResumeSession implements [BiometricService].
func (s *biometricService) ResumeSession(ctx context.Context, tokenString string) error {
	key, err := s.signingKey(ctx)
	if err != nil {
		return fmt.Errorf("derive session key: %w", err)
	}

	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		},
		jwt.WithIssuer(s.cfg.TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return ErrInvalidSessionToken
	}
	return nil
}

// Stats implements [BiometricService].
func (s *biometricService) Stats(ctx context.Context) models.BiometricStats {
	stats, err := s.loadStats(ctx)
	if err != nil {
		s.logger.Err(err).Msg("load biometric stats")
		return models.BiometricStats{}
	}
	return stats
}

// recordAttempt is the read-modify-write over the persisted counters done on
// every authentication attempt.
func (s *biometricService) recordAttempt(ctx context.Context, success bool) {
	stats, err := s.loadStats(ctx)
	if err != nil {
		s.logger.Err(err).Msg("load biometric stats")
	}

	stats.TotalAttempts++
	if success {
		stats.SuccessfulAttempts++
		stats.LastSuccessfulAuth = s.now()
	} else {
		stats.FailedAttempts++
		stats.LastFailedAuth = s.now()
	}

	blob, err := json.Marshal(stats)
	if err != nil {
		s.logger.Err(err).Msg("encode biometric stats")
		return
	}
	if err = s.kv.Put(ctx, store.KeyBiometricStats, blob); err != nil {
		s.logger.Err(err).Msg("persist biometric stats")
	}
}

func (s *biometricService) loadStats(ctx context.Context) (models.BiometricStats, error) {
	var stats models.BiometricStats

	blob, err := s.kv.Get(ctx, store.KeyBiometricStats)
	if errors.Is(err, store.ErrKeyNotFound) {
		return stats, nil
	}
	if err != nil {
		return stats, err
	}
	if err = json.Unmarshal(blob, &stats); err != nil {
		return models.BiometricStats{}, err
	}
	return stats, nil
}

func (s *biometricService) issueSessionToken(ctx context.Context) (string, error) {
	key, err := s.signingKey(ctx)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.cfg.TokenIssuer,
		Subject:   s.cfg.DeviceID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenDuration)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// signingKey derives the session signing key, generating and persisting the
// salt on first use.
func (s *biometricService) signingKey(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.settings.TokenSalt) == 0 {
		salt, err := s.keychain.GenerateSalt()
		if err != nil {
			return nil, fmt.Errorf("generate token salt: %w", err)
		}
		s.settings.TokenSalt = salt
		if err = s.persistSettings(ctx); err != nil {
			return nil, err
		}
	}

	return s.keychain.DeriveSigningKey(s.cfg.DeviceSecret, s.settings.TokenSalt), nil
}
