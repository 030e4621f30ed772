package entity

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidTarget indicates an identifier that is neither a well-formed
// email address nor a recognizable Iranian mobile number.
var ErrInvalidTarget = errors.New("invalid target identifier")

var (
	reEmail    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	reNonDigit = regexp.MustCompile(`\D`)
)

// Target is a normalized identifier an OTP challenge is issued against,
// together with the channel it is reachable on.
type Target struct {
	Value   string
	Channel Channel
}

// NormalizeTarget canonicalizes a raw identifier. Anything containing "@" is
// treated as an email (trimmed, lowercased); everything else must normalize
// to an Iranian mobile number in +989XXXXXXXXX form.
func NormalizeTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, ErrInvalidTarget
	}

	if strings.Contains(raw, "@") {
		email := strings.ToLower(raw)
		if !reEmail.MatchString(email) {
			return Target{}, ErrInvalidTarget
		}
		return Target{Value: email, Channel: ChannelEmail}, nil
	}

	phone, err := normalizeIranPhone(raw)
	if err != nil {
		return Target{}, err
	}

	return Target{Value: phone, Channel: ChannelSMS}, nil
}

// normalizeIranPhone strips formatting, the international or trunk prefix and
// the country code, then requires the ten-digit mobile core starting with 9.
func normalizeIranPhone(raw string) (string, error) {
	digits := reNonDigit.ReplaceAllString(raw, "")

	digits = strings.TrimPrefix(digits, "00")
	digits = strings.TrimPrefix(digits, "0")
	digits = strings.TrimPrefix(digits, "98")

	if len(digits) != 10 || digits[0] != '9' {
		return "", ErrInvalidTarget
	}

	return "+98" + digits, nil
}
