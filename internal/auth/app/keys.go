package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aussiebroadwan/surveybasket/pkg/cryptox"
)

// MinJWTKeyLength is the smallest HS256 key accepted, in bytes.
const MinJWTKeyLength = 32

var ErrMissingJWTKey = errors.New("AUTH_JWT_KEY or AUTH_JWT_KEY_FILE is required outside dev and test")

// LoadSigningKey resolves the HS256 key.
//
// Sources, in order:
//   - AUTH_JWT_KEY: the key itself.
//   - AUTH_JWT_KEY_FILE: a file holding the key, surrounding whitespace trimmed.
//   - In dev and test only: a random key generated on startup. Every token
//     becomes invalid when the service restarts.
func LoadSigningKey(cfg Config, logger *slog.Logger) ([]byte, error) {
	var key []byte
	switch {
	case cfg.JWTKey != "":
		key = []byte(cfg.JWTKey)
	case cfg.JWTKeyFile != "":
		raw, err := os.ReadFile(cfg.JWTKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt key file: %w", err)
		}
		key = []byte(strings.TrimSpace(string(raw)))
	case cfg.Env == "dev" || cfg.Env == "test":
		ephemeral, err := cryptox.RandomBytes(MinJWTKeyLength)
		if err != nil {
			return nil, err
		}
		logger.Warn("using ephemeral jwt signing key", "env", cfg.Env)
		return ephemeral, nil
	default:
		return nil, ErrMissingJWTKey
	}

	if len(key) < MinJWTKeyLength {
		return nil, fmt.Errorf("jwt key must be at least %d bytes, got %d", MinJWTKeyLength, len(key))
	}
	return key, nil
}
