package minicheck

import "net/netip"

// blockedRange is an IPv4 range a mini-check must not connect to. The Guard
// rejects only the ranges marked byGuard, with its own user-facing errors;
// the dialer refuses all of them.
type blockedRange struct {
	prefix  netip.Prefix
	byGuard bool
}

var blockedRanges = []blockedRange{
	{prefix: netip.MustParsePrefix("10.0.0.0/8"), byGuard: true},
	{prefix: netip.MustParsePrefix("127.0.0.0/8"), byGuard: true},
	{prefix: netip.MustParsePrefix("169.254.0.0/16"), byGuard: true},
	{prefix: netip.MustParsePrefix("172.16.0.0/12"), byGuard: true},
	{prefix: netip.MustParsePrefix("192.168.0.0/16"), byGuard: true},
	{prefix: netip.MustParsePrefix("100.64.0.0/10")},   // shared address space, RFC 6598
	{prefix: netip.MustParsePrefix("192.0.0.0/24")},    // IETF protocol assignments
	{prefix: netip.MustParsePrefix("192.0.2.0/24")},    // documentation, RFC 5737
	{prefix: netip.MustParsePrefix("198.18.0.0/15")},   // benchmarking, RFC 2544
	{prefix: netip.MustParsePrefix("198.51.100.0/24")}, // documentation
	{prefix: netip.MustParsePrefix("203.0.113.0/24")},  // documentation
}

// guardBlocks reports whether the Guard must reject addr.
func guardBlocks(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, r := range blockedRanges {
		if r.byGuard && r.prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// dialAllows reports whether addr is globally routable and outside every
// blocked range. IPv4-mapped IPv6 addresses are judged as IPv4.
func dialAllows(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}
	for _, r := range blockedRanges {
		if r.prefix.Contains(addr) {
			return false
		}
	}
	return true
}
