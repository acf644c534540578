package serper

import (
	"net/url"
	"strings"
)

// DefaultTrustedDomains is the allow-list used when no rules file overrides it.
var DefaultTrustedDomains = []string{
	// news
	"bbc.com",
	"reuters.com",
	"apnews.com",
	"cnn.com",
	"theguardian.com",
	"wsj.com",
	"ft.com",
	"bloomberg.com",
	"hindustantimes.com",
	"forbes.com",
	// government
	"treasury.gov",
	"fincen.gov",
	"sec.gov",
	"fbi.gov",
	"justice.gov",
	"state.gov",
	"europa.eu",
	// compliance
	"opensanctions.org",
	"sanctionslist.eu",
	"ofac.treasury.gov",
	"un.org",
	// financial industry
	"swift.com",
	"fatf-gafi.org",
	"wolfsberg-principles.com",
}

var sourceNames = map[string]string{
	"bbc.com":                  "BBC News",
	"reuters.com":              "Reuters",
	"apnews.com":               "Associated Press",
	"cnn.com":                  "CNN",
	"theguardian.com":          "The Guardian",
	"wsj.com":                  "The Wall Street Journal",
	"ft.com":                   "Financial Times",
	"bloomberg.com":            "Bloomberg",
	"hindustantimes.com":       "Hindustan Times",
	"forbes.com":               "Forbes",
	"treasury.gov":             "U.S. Department of Treasury",
	"fincen.gov":               "Financial Crimes Enforcement Network",
	"sec.gov":                  "Securities and Exchange Commission",
	"fbi.gov":                  "Federal Bureau of Investigation",
	"justice.gov":              "U.S. Department of Justice",
	"state.gov":                "U.S. Department of State",
	"europa.eu":                "European Union",
	"opensanctions.org":        "OpenSanctions",
	"sanctionslist.eu":         "EU Sanctions List",
	"ofac.treasury.gov":        "OFAC Sanctions List",
	"un.org":                   "United Nations",
	"swift.com":                "SWIFT",
	"fatf-gafi.org":            "Financial Action Task Force",
	"wolfsberg-principles.com": "Wolfsberg Group",
}

// AllowList matches hosts against trusted domains. A host matches a domain
// when it equals it or is a subdomain of it, after stripping "www.".
type AllowList struct {
	domains []string
}

func NewAllowList(domains []string) *AllowList {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return &AllowList{domains: normalized}
}

// Domains returns the normalized allow-list.
func (a *AllowList) Domains() []string {
	out := make([]string, len(a.domains))
	copy(out, a.domains)
	return out
}

// Match returns the most specific trusted domain for rawURL.
func (a *AllowList) Match(rawURL string) (host, trusted string, ok bool) {
	host = hostOf(rawURL)
	if host == "" {
		return "", "", false
	}
	for _, d := range a.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			if len(d) > len(trusted) {
				trusted = d
			}
		}
	}
	return host, trusted, trusted != ""
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// SourceName is the human-readable publisher for a trusted domain, falling
// back to the host itself.
func SourceName(trusted, host string) string {
	if name, ok := sourceNames[trusted]; ok {
		return name
	}
	return host
}
