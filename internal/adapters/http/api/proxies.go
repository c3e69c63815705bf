package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ProxyList holds the networks whose forwarding headers are believed.
type ProxyList []netip.Prefix

// ParseProxies reads addresses and CIDR ranges. Invalid entries are skipped
// and reported together in the error.
func ParseProxies(entries []string) (ProxyList, error) {
	var (
		out  ProxyList
		errs []error
	)
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: trusted proxy %q", ErrBadRequest, e))
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, errors.Join(errs...)
}

// Trusts reports whether ip belongs to a trusted proxy.
func (p ProxyList) Trusts(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP resolves the caller. Forwarding headers count only when the
// connection comes from a trusted proxy; X-Forwarded-For is then walked from
// the right, skipping trusted hops, so a client cannot prepend its own entries.
func (p ProxyList) ClientIP(r *http.Request) string {
	peer := remoteHost(r)
	if peer == "" {
		return "unknown"
	}
	if !p.Trusts(peer) {
		return peer
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if i == 0 || !p.Trusts(hop) {
				return hop
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return peer
}

func remoteHost(r *http.Request) string {
	if r.RemoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
