package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Key prefixes per cached surface. Invalidation works on these prefixes, so
// every read and write of a given surface must build its keys from the same
// one.
const (
	PrefixVendor    = "vendor:"
	PrefixVehicle   = "vehicle:"
	PrefixMaterial  = "material:"
	PrefixPlant     = "plant:"
	PrefixEntry     = "entry:"
	PrefixInvoice   = "invoice:"
	PrefixDashboard = "dashboard:"
)

// Key joins parts into a canonical cache key: "part1:part2:...".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// FilterKey builds a deterministic key for a filtered list query. Params are
// serialized in sorted key order, so two maps with the same content always
// produce the same key regardless of insertion order.
func FilterKey(prefix string, params map[string]any) string {
	if len(params) == 0 {
		return prefix + "all"
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(prefix)
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		fmt.Fprintf(&b, "%s=%v", name, params[name])
	}
	return b.String()
}
