package dynamic

import (
	"encoding/json"
)

// Trace captures provenance for a property lookup: every read-chain
// delegate consulted, whether it recognised the name, and the value it
// would contribute. The first found probe is the one a plain Property call
// returns; later found probes are shadowed.
type Trace struct {
	Name   string  `json:"name"`
	Owner  string  `json:"owner"`
	Probes []Probe `json:"probes"`
}

// Probe details how one delegate responded to a traced lookup.
type Probe struct {
	Delegate string `json:"delegate"`
	Found    bool   `json:"found"`
	Value    any    `json:"value,omitempty"`
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously generated via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// TraceProperty probes every read-chain delegate for name without
// short-circuiting, so shadowed values stay visible.
func (r *Resolver) TraceProperty(name string) Trace {
	trace := Trace{
		Name:  name,
		Owner: r.DisplayName(),
	}
	for _, view := range r.readChain {
		probe := Probe{Delegate: view.DisplayName()}
		if view.HasProperty(name) {
			probe.Found = true
			if value, err := view.Property(name); err == nil {
				probe.Value = value
			}
		}
		trace.Probes = append(trace.Probes, probe)
	}
	return trace
}
