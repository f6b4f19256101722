package settings

import "encoding/json"

// Trace captures provenance for one setting's resolution walk: each node
// from the queried one up to the root, with the value it contributes.
type Trace struct {
	Setting string       `json:"setting"`
	Steps   []Provenance `json:"steps"`
}

// Provenance describes one node visited during a resolution walk.
type Provenance struct {
	NodeID string `json:"node_id"`
	Root   bool   `json:"root,omitempty"`
	Set    bool   `json:"set"`
	Value  string `json:"value,omitempty"`
}

// TraceSetting walks the delegation chain for name and records, per node,
// whether the local slot is set and its rendered value. Unknown names
// yield *UnknownSettingError.
func (n *Node) TraceSetting(name string) (Trace, error) {
	var def *settingDef
	for i := range settingDefs {
		if settingDefs[i].name == name {
			def = &settingDefs[i]
			break
		}
	}
	if def == nil {
		return Trace{}, &UnknownSettingError{
			Name:       name,
			Suggestion: suggestSettingName(name, settingNames),
		}
	}
	trace := Trace{Setting: name}
	for node := n; node != nil; node = node.parent.Load() {
		value, set := def.local(node)
		trace.Steps = append(trace.Steps, Provenance{
			NodeID: node.ID(),
			Root:   node.parent.Load() == nil,
			Set:    set,
			Value:  value,
		})
	}
	return trace, nil
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
