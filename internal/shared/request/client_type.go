package request

import "strings"

type ClientType string

const (
	ClientWeb    ClientType = "web"
	ClientMobile ClientType = "mobile"
	ClientAPI    ClientType = "api"
)

// ResolveClientType trusts the explicit X-Client-Type header first and
// falls back to sniffing the user agent.
func ResolveClientType(header, userAgent string) ClientType {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "web":
		return ClientWeb
	case "mobile":
		return ClientMobile
	case "api":
		return ClientAPI
	}

	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "mozilla") || strings.Contains(ua, "chrome") || strings.Contains(ua, "safari") {
		return ClientWeb
	}
	return ClientAPI
}

func IsWebClient(t ClientType) bool {
	return t == ClientWeb
}
