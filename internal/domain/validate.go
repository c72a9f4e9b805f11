package domain

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

const (
	// DefaultFaviconService is the favicon lookup endpoint used for icons.
	DefaultFaviconService = "https://www.google.com/s2/favicons"

	// FaviconSize is the requested icon size in pixels.
	FaviconSize = 128
)

// User-facing validation failures. The messages are shown verbatim.
var (
	ErrEmptyURL       = errors.New("Please enter a URL.")
	ErrInvalidURL     = errors.New("The URL you entered doesn't seem valid. Please check it.")
	ErrNotFullAddress = errors.New("That URL doesn't appear to be valid. Please enter a full website address like example.com.")
	ErrMissingFields  = errors.New("Please enter both a Title and a URL.")
)

var schemePrefixRegexp = regexp.MustCompile(`(?i)^https?://`)

// hostProfile converts hostnames the way browsers do: UTS #46 mapping,
// non-transitional, underscores and edge hyphens allowed.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
	idna.CheckHyphens(false),
)

// ValidatedURL is the outcome of a successful Validate call.
type ValidatedURL struct {
	URL    string `json:"url"`    // Normalized URL (scheme prepended if missing)
	Domain string `json:"domain"` // Lowercased hostname, no port
}

// IsValidationError reports whether err is one of the user-facing
// validation failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyURL) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrNotFullAddress) ||
		errors.Is(err, ErrMissingFields)
}

// Validate normalizes raw user input into an absolute URL.
// Checks run in a fixed order: empty, scheme prefix, parse, domain shape.
// Examples:
//   - "example.com"    -> https://example.com (domain example.com)
//   - "localhost:8080" -> https://localhost:8080 (domain localhost)
//   - "justaword"      -> ErrNotFullAddress
func Validate(rawURL string) (ValidatedURL, error) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return ValidatedURL{}, ErrEmptyURL
	}

	if !schemePrefixRegexp.MatchString(u) {
		u = "https://" + u
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return ValidatedURL{}, ErrInvalidURL
	}

	// A URL with a scheme but no host ("https://") is not a usable address.
	domain, err := asciiHost(parsed.Hostname())
	if err != nil || domain == "" {
		return ValidatedURL{}, ErrInvalidURL
	}

	if port := parsed.Port(); port != "" {
		if n, err := strconv.Atoi(port); err != nil || n > 65535 {
			return ValidatedURL{}, ErrInvalidURL
		}
	}

	if domain != "localhost" && !strings.Contains(domain, ".") {
		return ValidatedURL{}, ErrNotFullAddress
	}

	return ValidatedURL{URL: u, Domain: domain}, nil
}

// DeriveIcon returns the favicon URL for a domain using the default service.
func DeriveIcon(domain string) string {
	return FaviconURL(DefaultFaviconService, domain)
}

// FaviconURL formats a favicon lookup URL for the given service and domain.
// No network call is made.
func FaviconURL(service, domain string) string {
	if service == "" {
		service = DefaultFaviconService
	}
	return fmt.Sprintf("%s?sz=%d&domain=%s", service, FaviconSize, domain)
}

// DomainOf extracts the lowercased hostname of an already stored URL.
// Returns an empty string when the URL cannot be parsed.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host, err := asciiHost(parsed.Hostname())
	if err != nil {
		return strings.ToLower(parsed.Hostname())
	}
	return host
}

// asciiHost lowercases host and converts internationalized names to
// their punycode form (münchen.de -> xn--mnchen-3ya.de).
func asciiHost(host string) (string, error) {
	host = strings.ToLower(host)
	if isASCII(host) {
		return host, nil
	}
	return hostProfile.ToASCII(host)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
