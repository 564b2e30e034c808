package rsvp

import "strings"

// NormalizeTags trims, lowercases, and de-duplicates allergy codes while
// preserving first-seen order, so repeated renders of a summary stay
// visually stable. Unknown codes pass through untouched; the vocabulary
// filter is a display concern, not a storage one.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseTags splits the comma-joined storage form back into a normalized
// list. Codes arrive either comma-joined (storage, stale clients) or as a
// list (the JSON API); both funnel through NormalizeTags.
func ParseTags(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	return NormalizeTags(strings.Split(joined, ","))
}

func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

// KnownTags keeps only codes present in the vocabulary. Used by the
// UI-facing "allergen chip" layer; never applied before storage, so
// custom codes survive round-trips.
func KnownTags(tags []string, vocabulary []string) []string {
	known := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		known[v] = struct{}{}
	}
	out := make([]string, 0, len(tags))
	for _, tag := range NormalizeTags(tags) {
		if _, ok := known[tag]; ok {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeEmail lowercases and trims; empty input stays empty.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips everything that isn't a digit: "+34 600-123" ->
// "34600123". It does not validate length or country.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
