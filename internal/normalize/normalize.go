// SPDX-License-Identifier: AGPL-3.0-or-later

// Package normalize produces comment- and whitespace-insensitive fingerprints of source text.
//
// Two strategies satisfy the Normalizer interface: Regex, which strips comments by
// extension-keyed patterns, and External, which delegates to a language-aware tool.
// Both are idempotent and comment-insensitive; callers depend only on Fingerprint.
package normalize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/nexical/docgap/internal/config"
)

var errNoCommand = errors.New("no normalizer command configured")

// Normalizer canonicalizes source text so cosmetic edits compare equal.
type Normalizer interface {
	Normalize(ctx context.Context, text, ext string) (string, error)
}

// Fingerprint returns the hex SHA-256 digest of text after normalization.
func Fingerprint(ctx context.Context, n Normalizer, text, ext string) (string, error) {
	canonical, err := n.Normalize(ctx, text, ext)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}

// FromConfig selects the strategy named by the semantic configuration.
func FromConfig(cfg config.SemanticConfig) Normalizer {
	if cfg.Normalizer == config.NormalizerExternal {
		return &External{Command: cfg.Command}
	}
	return Regex{}
}

// collapse folds every whitespace run, newlines included, into one space and trims.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

