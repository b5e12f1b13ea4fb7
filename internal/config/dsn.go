package config

import (
	"cmp"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// URLValue returns the go-redis connection URL: the explicit URL when set,
// otherwise one assembled from host, port, password, db and tls.
func (c RedisRuntimeConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}

	u := url.URL{
		Scheme: "redis",
		Host: net.JoinHostPort(
			cmp.Or(strings.TrimSpace(c.Host), defaultRedisHost),
			strconv.Itoa(cmp.Or(c.Port, defaultRedisPort)),
		),
		Path: "/" + strconv.Itoa(max(c.DB, defaultRedisDB)),
	}
	if c.TLS {
		u.Scheme = "rediss"
	}
	if pw := strings.TrimSpace(c.Password); pw != "" {
		u.User = url.UserPassword("", pw)
	}
	return u.String()
}
