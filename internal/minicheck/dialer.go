package minicheck

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned when a connection would reach a
// non-public address after DNS resolution.
var ErrBlockedAddress = errors.New("connection to non-public address refused")

// publicOnlyDialer checks the address actually being dialed against
// blockedRanges. The Guard only sees A records before the request; this also
// catches AAAA answers and a name that resolves differently at connect time.
func publicOnlyDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refuseNonPublic,
	}
}

func refuseNonPublic(_ string, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBlockedAddress, err)
	}

	if !dialAllows(addrPort.Addr()) {
		return ErrBlockedAddress
	}

	return nil
}
