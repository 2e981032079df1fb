package upload

import (
	"errors"
	"net"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind buckets provider errors by how the state machine should react.
type Kind int

const (
	// KindTransient covers timeouts, connection drops, 429 and 5xx.
	KindTransient Kind = iota
	// KindAuthExpired means the access token is stale or revoked.
	KindAuthExpired
	// KindQuotaExceeded means the daily API quota is spent.
	KindQuotaExceeded
	// KindPermanent is everything else (bad metadata, rejected file).
	KindPermanent
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuthExpired:
		return "auth_expired"
	case KindQuotaExceeded:
		return "quota_exceeded"
	default:
		return "permanent"
	}
}

var (
	// ErrCredentialsExpired means the refresh token itself is dead and
	// someone has to re-authorize by hand.
	ErrCredentialsExpired = errors.New("upload: credentials need manual renewal")

	// ErrQuotaExceeded defers the upload to the next scheduled run.
	ErrQuotaExceeded = errors.New("upload: daily quota exceeded")
)

// Classify maps an upload error onto a recovery strategy.
func Classify(err error) Kind {
	if err == nil {
		return KindPermanent
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "quotaexceeded") || strings.Contains(msg, "quota exceeded") ||
		strings.Contains(msg, "dailylimitexceeded") {
		return KindQuotaExceeded
	}

	if strings.Contains(msg, "invalid_grant") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid credentials") || strings.Contains(msg, "token expired") {
		return KindAuthExpired
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401:
			return KindAuthExpired
		case apiErr.Code == 403 && hasReason(apiErr, "quotaExceeded"):
			return KindQuotaExceeded
		case apiErr.Code == 429 || apiErr.Code >= 500:
			return KindTransient
		default:
			return KindPermanent
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") || strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof") {
		return KindTransient
	}

	return KindPermanent
}

func hasReason(apiErr *googleapi.Error, reason string) bool {
	for _, item := range apiErr.Errors {
		if item.Reason == reason {
			return true
		}
	}
	return strings.Contains(strings.ToLower(apiErr.Message), strings.ToLower(reason))
}
