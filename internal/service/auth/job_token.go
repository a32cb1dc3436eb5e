package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/phrazzld/taskflow-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// JobTokenVerifier checks the operator token presented to job endpoints.
type JobTokenVerifier struct {
	plain []byte
	hash  []byte
}

// NewJobTokenVerifier builds a verifier from the jobs configuration. A
// configured hash takes precedence over a plaintext token.
func NewJobTokenVerifier(cfg config.JobsConfig) *JobTokenVerifier {
	v := &JobTokenVerifier{}
	if h := strings.TrimSpace(cfg.RunnerTokenHash); h != "" {
		v.hash = []byte(h)
		return v
	}
	if p := strings.TrimSpace(cfg.RunnerToken); p != "" {
		v.plain = []byte(p)
	}
	return v
}

// Configured reports whether a runner token or hash is set.
func (v *JobTokenVerifier) Configured() bool {
	return v != nil && (len(v.hash) > 0 || len(v.plain) > 0)
}

// Verify returns nil when provided matches the configured token,
// ErrJobTokenNotConfigured when nothing is configured and
// ErrJobTokenMismatch otherwise.
func (v *JobTokenVerifier) Verify(provided string) error {
	if !v.Configured() {
		return ErrJobTokenNotConfigured
	}
	provided = strings.TrimSpace(provided)
	if provided == "" {
		return ErrJobTokenMismatch
	}

	if len(v.hash) > 0 {
		err := bcrypt.CompareHashAndPassword(v.hash, []byte(provided))
		if err == nil {
			return nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrJobTokenMismatch
		}
		return errors.Join(ErrJobTokenMismatch, err)
	}

	if subtle.ConstantTimeCompare(v.plain, []byte(provided)) != 1 {
		return ErrJobTokenMismatch
	}
	return nil
}

// HashJobToken returns the bcrypt hash to store as jobs.runner_token_hash.
func HashJobToken(token string, cost int) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("token cannot be empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
