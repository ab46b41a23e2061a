package notifier

import (
	"fmt"
	"strings"

	"newera.app/reentry/internal/entity"
)

// DeepLink builds the resource page URL carrying the referral key. Only spaces are escaped
// so the token survives SMS clients that break links on whitespace.
func DeepLink(baseURL string, resourceID uint, token string) string {
	return fmt.Sprintf("%s/resources/%d?key=%s",
		strings.TrimRight(baseURL, "/"), resourceID, strings.ReplaceAll(token, " ", "%20"))
}

func siteHost(baseURL string) string {
	host := strings.TrimPrefix(baseURL, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

func referrerName(r *entity.Referral) string {
	if r.User == nil {
		return ""
	}
	return r.User.FullName()
}

func emailSubject(orgName string, r *entity.Referral) string {
	return fmt.Sprintf("%s Referral from %s: %s, and other resources.",
		orgName, referrerName(r), strings.Join(r.ResourceNames(), ", "))
}

func smsBody(orgName, baseURL string, r *entity.Referral, token string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s Referral: \n\n%s \n --%s \n\n--------- ", orgName, r.Notes, referrerName(r))
	for _, res := range r.Resources {
		fmt.Fprintf(&b, "\n%s: %s\n", res.Name, DeepLink(baseURL, res.ID, token))
	}
	fmt.Fprintf(&b, "--------- \n See us online for more: %s", siteHost(baseURL))
	return b.String()
}

type resourceLink struct {
	Name string
	Link string
}

type mailerContext struct {
	OrgName   string
	UserName  string
	Notes     string
	TimeStamp string
	SiteURL   string
	Resources []resourceLink
}

func newMailerContext(orgName, baseURL string, r *entity.Referral, token string) mailerContext {
	links := make([]resourceLink, 0, len(r.Resources))
	for _, res := range r.Resources {
		links = append(links, resourceLink{Name: res.Name, Link: DeepLink(baseURL, res.ID, token)})
	}
	return mailerContext{
		OrgName:   orgName,
		UserName:  referrerName(r),
		Notes:     r.Notes,
		TimeStamp: token,
		SiteURL:   strings.TrimRight(baseURL, "/"),
		Resources: links,
	}
}
