package model

import (
	"strings"
	"time"

	"activation-code-service/internal/domain"
)

// CodeLength is the exact length of a well-formed activation code.
const CodeLength = 20

// AnonymousRequester is recorded as the redeemer when the caller supplies no identity.
const AnonymousRequester = "anonymous"

// ActivationCode represents a single-use code redeemable exactly once.
type ActivationCode struct {
	Code      string
	IsUsed    bool
	UsedBy    *string    // Pointer to allow for NULL
	UsedAt    *time.Time // Pointer to allow for NULL
	CreatedAt time.Time
}

// CodeStats holds aggregate counts over the code pool.
type CodeStats struct {
	Total     int64
	Used      int64
	Available int64
}

// NormalizeCode trims and lowercases raw input, then validates it against the
// canonical format: exactly 20 characters from [0-9a-z].
func NormalizeCode(raw string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if code == "" {
		return "", domain.ErrEmptyCode
	}
	if len(code) != CodeLength {
		return "", domain.ErrBadCodeFormat
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return "", domain.ErrBadCodeFormat
		}
	}
	return code, nil
}

// DefaultRequester substitutes the anonymous sentinel for an absent identity.
func DefaultRequester(requester string) string {
	if strings.TrimSpace(requester) == "" {
		return AnonymousRequester
	}
	return requester
}
