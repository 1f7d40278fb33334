package minicheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"

	"github.com/lucera/minicheck/internal/platform/errs"
)

var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrSchemeNotAllowed = errors.New("scheme not allowed")
	ErrLocalhost        = errors.New("localhost target")
	ErrPrivateIP        = errors.New("private IPv4 literal")
	ErrPrivateIPViaDNS  = errors.New("host resolves to a private IPv4 address")
	ErrIPv6Unsupported  = errors.New("IPv6 literal not supported")
	ErrResolve          = errors.New("host could not be resolved")
)

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Guard decides whether a URL may be fetched. It must be consulted for the
// initial URL and again for every redirect target.
type Guard struct {
	resolver Resolver
}

// NewGuard returns a Guard that resolves host names with r.
// A nil r uses net.DefaultResolver.
func NewGuard(r Resolver) *Guard {
	if r == nil {
		r = net.DefaultResolver
	}
	return &Guard{resolver: r}
}

// Check parses raw and returns it if it addresses a public host over http
// or https. Rejections are *errs.AppError values wrapping one of the
// sentinel errors above; messages never include resolved addresses.
func (g *Guard) Check(ctx context.Context, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errs.New(errs.InvalidInput, "Invalid URL.", ErrInvalidURL)
	}
	if !u.IsAbs() {
		return nil, errs.New(errs.InvalidInput, "Invalid URL.", ErrInvalidURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errs.New(errs.InvalidInput, "Only http and https URLs are allowed.", ErrSchemeNotAllowed)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, errs.New(errs.InvalidInput, "Invalid URL.", ErrInvalidURL)
	}

	if name := strings.TrimSuffix(host, "."); name == "localhost" || strings.HasSuffix(name, ".localhost") {
		return nil, errs.New(errs.Blocked, "URL not allowed (localhost).", ErrLocalhost)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if !addr.Is4() {
			return nil, errs.New(errs.Blocked, "IPv6 URLs are not supported.", ErrIPv6Unsupported)
		}
		if guardBlocks(addr) {
			return nil, errs.New(errs.Blocked, "URL not allowed (private IP).", ErrPrivateIP)
		}
		return u, nil
	}

	addrs, err := g.resolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errs.New(errs.Timeout, "The page took too long to respond.", fmt.Errorf("%w: %w", ErrResolve, ctx.Err()))
		}
		return nil, errs.New(errs.Unreachable, "The host name could not be resolved.", fmt.Errorf("%w: %w", ErrResolve, err))
	}
	if len(addrs) == 0 {
		return nil, errs.New(errs.Unreachable, "The host name could not be resolved.", ErrResolve)
	}
	for _, addr := range addrs {
		if guardBlocks(addr) {
			return nil, errs.New(errs.Blocked, "URL not allowed (private IP via DNS).", ErrPrivateIPViaDNS)
		}
	}

	return u, nil
}
