package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"blog/internal/observability/logging"
)

// IPExtractor decides which client address a request is attributed to.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor attributes requests to the TCP peer and ignores
// forwarding headers.
type RemoteAddrExtractor struct{}

// ExtractIP strips the port from r.RemoteAddr.
func (RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	addr, err := peerAddr(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// TrustedProxies lists the reverse proxies whose forwarding headers are believed.
type TrustedProxies struct {
	Enabled  bool
	Prefixes []netip.Prefix
}

// ParseTrustedProxies reads IPs and CIDR ranges such as "10.0.0.0/8" or
// "192.0.2.7". Blank entries are skipped; an empty list disables proxy trust.
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	p := &TrustedProxies{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		prefix, err := parsePrefix(entry)
		if err != nil {
			return nil, err
		}
		p.Prefixes = append(p.Prefixes, prefix)
	}
	p.Enabled = len(p.Prefixes) > 0
	return p, nil
}

func parsePrefix(entry string) (netip.Prefix, error) {
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid trusted proxy CIDR %q: %w", entry, err)
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid trusted proxy address %q: %w", entry, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// Trusts reports whether addr belongs to a trusted proxy.
func (p *TrustedProxies) Trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range p.Prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ForwardedExtractor believes X-Forwarded-For and X-Real-IP only from trusted
// peers. X-Forwarded-For is walked from the right and the first hop that is not
// a trusted proxy wins, so a client cannot pick its own address by prepending.
type ForwardedExtractor struct {
	proxies TrustedProxies
}

// NewIPExtractor returns a ForwardedExtractor when proxies are configured and
// a RemoteAddrExtractor otherwise.
func NewIPExtractor(proxies *TrustedProxies) IPExtractor {
	if proxies == nil || !proxies.Enabled {
		return RemoteAddrExtractor{}
	}
	return &ForwardedExtractor{proxies: *proxies}
}

func (e *ForwardedExtractor) ExtractIP(r *http.Request) (string, error) {
	peer, err := peerAddr(r.RemoteAddr)
	if err != nil {
		return "", err
	}

	if !e.proxies.Trusts(peer) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			logging.FromContext(r.Context()).Warn("ignoring X-Forwarded-For from untrusted peer",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff))
		}
		return peer.String(), nil
	}

	if client, ok := e.fromForwardedFor(r.Header.Values("X-Forwarded-For")); ok {
		return client.String(), nil
	}
	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.Unmap().String(), nil
	}
	return peer.String(), nil
}

// fromForwardedFor returns the rightmost hop that is not a trusted proxy.
// A malformed hop ends the walk since nothing left of it can be believed.
func (e *ForwardedExtractor) fromForwardedFor(headers []string) (netip.Addr, bool) {
	var hops []string
	for _, h := range headers {
		hops = append(hops, strings.Split(h, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			return netip.Addr{}, false
		}
		addr = addr.Unmap()
		if !e.proxies.Trusts(addr) {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

// peerAddr accepts "host:port" or a bare IP.
func peerAddr(remote string) (netip.Addr, error) {
	host := remote
	if h, _, err := net.SplitHostPort(remote); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid remote address %q", remote)
	}
	return addr.Unmap(), nil
}
