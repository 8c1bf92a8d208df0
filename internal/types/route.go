package types

// MaxHops bounds the length of a single route's pool path.
const MaxHops = 4

// Route is an ordered sequence of pools plus a protocol tag and the integer
// percentage of the overall trade this route is responsible for.
type Route struct {
	Protocol   Protocol `json:"protocol"`
	Path       []*Pool  `json:"path"`
	Percentage int      `json:"percentage"`
}

// NewRoute infers the protocol tag (MIXED when the path spans more than one
// protocol) and defaults Percentage to 100 when unset.
func NewRoute(path []*Pool, percentage int) *Route {
	if percentage == 0 {
		percentage = 100
	}
	return &Route{
		Protocol:   inferProtocol(path),
		Path:       path,
		Percentage: percentage,
	}
}

func inferProtocol(path []*Pool) Protocol {
	if len(path) == 0 {
		return ""
	}
	first := path[0].Protocol
	for _, p := range path[1:] {
		if p.Protocol != first {
			return ProtocolMixed
		}
	}
	return first
}

// PoolAddressSequence returns the ordered identity keys of the route's
// pools, used to detect duplicate pools across a split (§3 Route invariant)
// and to key routes when the orchestrator de-duplicates candidates.
func (r *Route) PoolAddressSequence() []string {
	seq := make([]string, len(r.Path))
	for i, p := range r.Path {
		seq[i] = p.IdentityKey()
	}
	return seq
}

// WithPercentage returns a shallow copy of the route tagged with a new
// percentage, used by the allocator's expansion step (§4.3).
func (r *Route) WithPercentage(pct int) *Route {
	return &Route{
		Protocol:   r.Protocol,
		Path:       r.Path,
		Percentage: pct,
	}
}

// SameRoute reports whether two routes have identical percentage and pool
// address sequence.
func (r *Route) SameRoute(other *Route) bool {
	if r.Percentage != other.Percentage {
		return false
	}
	a, b := r.PoolAddressSequence(), other.PoolAddressSequence()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VisiblePath returns the route's pools with internal fake-V4 bridging
// pools removed, preserving order (§4.10 fake-pool filtering).
func (r *Route) VisiblePath() []*Pool {
	out := make([]*Pool, 0, len(r.Path))
	for _, p := range r.Path {
		if p.IsFakeV4Pool() {
			continue
		}
		out = append(out, p)
	}
	return out
}
