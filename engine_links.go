package bloombox

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/bloombox/signedtoken"
)

// issueLink signs {email, purpose} and returns the absolute URL under path.
func (e *Engine) issueLink(path, purpose, email string) (string, error) {
	token, err := e.links.Encode(map[string]any{
		"email":   email,
		"purpose": purpose,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}
	base := strings.TrimRight(e.config.Links.BaseURL, "/")
	return base + path + url.PathEscape(token), nil
}

// openLink decodes a link token of the given purpose and returns the email
// it was issued for.
func (e *Engine) openLink(token, purpose string, maxAge time.Duration) (string, error) {
	claims, err := e.links.Decode(token, maxAge)
	if err != nil {
		return "", mapLinkErr(err)
	}

	// A verification link must not work as a reset link and vice versa.
	if p, _ := claims["purpose"].(string); p != purpose {
		return "", ErrInvalidSignature
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", ErrTokenDecode
	}
	return normalizeEmail(email), nil
}

func mapLinkErr(err error) error {
	switch {
	case errors.Is(err, signedtoken.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, signedtoken.ErrInvalidSignature):
		return ErrInvalidSignature
	case errors.Is(err, signedtoken.ErrTokenCreation):
		return fmt.Errorf("%w: %v", ErrTokenCreation, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
