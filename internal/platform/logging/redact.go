package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	jwtPattern       = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)
)

// DefaultRedactOptions returns the masq options applied to every handler.
// Session cookies are credentials for a widget session, so cookie values
// are masked along with the usual secrets.
func DefaultRedactOptions() []masq.Option {
	fieldNames := []string{
		"password", "secret", "token",
		"apiKey", "apikey", "api_key",
		"accessToken", "access_token", "refreshToken", "refresh_token",
		"credential", "credentials",
		"authorization", "auth", "bearer",
		"cookie", "set_cookie", "session",
		"privateKey", "private_key", "secretKey", "secret_key",
	}

	opts := make([]masq.Option, 0, len(fieldNames)+5)
	for _, name := range fieldNames {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr that redacts with
// DefaultRedactOptions plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
