package notifier

import (
	"strings"

	"newera.app/reentry/internal/entity"
)

// firstNonEmpty returns the first candidate that is not blank after trimming.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

// EmailCandidates lists the addresses a referral email may go to, most specific first.
func EmailCandidates(r *entity.Referral) []string {
	candidates := []string{r.Email}
	if r.CaseUser != nil {
		candidates = append(candidates, r.CaseUser.Email)
	}
	return candidates
}

// SMSCandidates lists the numbers a referral text may go to, most specific first.
func SMSCandidates(r *entity.Referral) []string {
	candidates := []string{r.Phone}
	if r.CaseUser != nil {
		candidates = append(candidates, r.CaseUser.PhoneNumber())
	}
	return candidates
}

// ResolveEmailRecipient picks the referral's own address, then the client's. Empty means no email.
func ResolveEmailRecipient(r *entity.Referral) string {
	return firstNonEmpty(EmailCandidates(r)...)
}

// ResolveSMSRecipient picks the referral's own number, then the client's. Empty means no text.
func ResolveSMSRecipient(r *entity.Referral) string {
	return firstNonEmpty(SMSCandidates(r)...)
}
