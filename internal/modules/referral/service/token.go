package referral

import (
	"fmt"
	"strings"
	"time"

	"newera.app/reentry/pkg/apperror"
)

// AccessKeyLayout formats referral timestamps into deep link keys.
const AccessKeyLayout = "2006-01-02 15:04:05.999999"

// AccessKey is the deep link key for a referral created at t.
func AccessKey(t time.Time) string {
	return t.UTC().Format(AccessKeyLayout)
}

// ParseAccessKey reverses AccessKey.
func ParseAccessKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(AccessKeyLayout, strings.TrimSpace(key), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed referral key %q: %w", key, apperror.ErrBadRequest)
	}
	return t, nil
}
