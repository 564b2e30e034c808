package store

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"banquet/src-server/model"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const guestCodeSuffixLen = 4

// generateGuestCode builds a stable, human-readable code like
// "ANAGARC-8H2K": up to seven letters from the name plus a random
// suffix, retried until unique.
func (s *GuestStore) generateGuestCode(ctx context.Context, fullName string) (string, error) {
	base := codePrefix(fullName)
	for attempt := 0; attempt < 32; attempt++ {
		code := fmt.Sprintf("%s-%s", base, codeSuffix())
		exists, err := s.DB.NewSelect().
			Model((*model.Guest)(nil)).
			Where("guest_code = ?", code).
			Exists(ctx)
		if err != nil {
			return "", fmt.Errorf("generateGuestCode: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("generateGuestCode: can't find a unique code for %q", base)
}

func codePrefix(fullName string) string {
	// strip diacritics so "García" and "Garcia" produce the same prefix
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		fullName,
	)
	if err != nil {
		stripped = fullName
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(stripped) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 7 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "GUEST"
	}
	return b.String()
}

func codeSuffix() string {
	var b strings.Builder
	for _, r := range strings.ToUpper(uuid.NewString()) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == guestCodeSuffixLen {
				break
			}
		}
	}
	return b.String()
}
