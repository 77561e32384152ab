package auth

import (
	"fmt"
	"strings"
)

// Capability is one named action a principal may perform. Checks are
// explicit membership tests, never string pattern matching.
type Capability string

const (
	CapDevicesRead    Capability = "devices:read"
	CapDevicesWrite   Capability = "devices:write"
	CapTelemetryWrite Capability = "telemetry:write"
	CapLimiterWrite   Capability = "limiter:write"
)

type CapabilitySet map[Capability]struct{}

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// ParseCapabilities reads a comma-separated capability list, e.g. the
// value of an X-Capabilities header. Unknown names are kept as-is so a
// deny carries the name the caller actually sent.
func ParseCapabilities(raw string) CapabilitySet {
	set := make(CapabilitySet)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			set[Capability(part)] = struct{}{}
		}
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Principal is the acting identity. Superuser is an explicit flag on
// the principal, not a magic identifier.
type Principal struct {
	Name         string
	IsSuperuser  bool
	Capabilities CapabilitySet
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Can gates an action for a principal. The deny reason is surfaced
// verbatim to callers.
func Can(p *Principal, action Capability) Decision {
	if p == nil {
		return deny("no principal")
	}
	if p.IsSuperuser {
		return allow()
	}
	if p.Capabilities.Has(action) {
		return allow()
	}
	return deny(fmt.Sprintf("capability %q not granted to %q", action, p.Name))
}
