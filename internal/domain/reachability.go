package domain

import "encoding/json"

type ReachabilityKind int

const (
	Reachable ReachabilityKind = iota
	Unreachable
	SessionMismatch
)

func (k ReachabilityKind) String() string {
	switch k {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case SessionMismatch:
		return "session_mismatch"
	default:
		return "unknown"
	}
}

// Reachability is the outcome of a single proxy round trip. Detail holds
// the transport error text for Unreachable and the response excerpt for
// SessionMismatch.
type Reachability struct {
	Kind   ReachabilityKind
	Detail string
}

func ProxyReachable() Reachability { return Reachability{Kind: Reachable} }

func ProxyUnreachable(cause string) Reachability {
	return Reachability{Kind: Unreachable, Detail: cause}
}

func ProxySessionMismatch(received string) Reachability {
	return Reachability{Kind: SessionMismatch, Detail: received}
}

func (r Reachability) OK() bool { return r.Kind == Reachable }

// String renders the value shown next to "Proxy Available".
func (r Reachability) String() string {
	switch r.Kind {
	case Reachable:
		return "Yes"
	case SessionMismatch:
		return "No (Invalid response: " + r.Detail + ")"
	default:
		return "No (" + r.Detail + ")"
	}
}

func (r Reachability) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   string `json:"kind"`
		Detail string `json:"detail,omitempty"`
	}{r.Kind.String(), r.Detail})
}
