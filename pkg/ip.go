package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1$`)

// IPIsLocal reports whether the address is loopback or a docker bridge gateway.
func IPIsLocal(ipAddr string) bool {
	host := stripPort(ipAddr)
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return true
	}
	return localDockerIpRegex.MatchString(host)
}

// ReadUserIP returns the client address, preferring the proxy headers.
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.Header.Get("X-Real-Ip")
	if ipAddr == "" {
		// first entry is the original client
		ipAddr, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	}
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}
	ipAddr = strings.TrimSpace(ipAddr)

	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}

	host := stripPort(ipAddr)
	if net.ParseIP(host) == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}
	return host, nil
}

func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
