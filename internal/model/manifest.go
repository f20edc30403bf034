package model

// EnvironmentVariable is a name/value pair. Value is nil for a variable
// that is declared but unset.
type EnvironmentVariable struct {
	Name  string
	Value *string
}

// Label is a free-form key with an optional value, attached to a Manifest
// and inherited by every Instance of that App.
type Label struct {
	Label string
	Value *string
}

// Editor is an in-instance UI endpoint advertised on a fixed container
// port. When SupportsReverseProxy is true the editor proxies itself and
// the orchestrator must not allocate a Floxy redirect for it.
type Editor struct {
	Port                 uint16
	SupportsReverseProxy bool
}

// Manifest is read-only, per-AppKey metadata. It never changes once an App
// has been installed against it.
type Manifest struct {
	Key                AppKey
	MultiInstance      bool
	Editors            []Editor
	Labels             []Label
	DefaultEnvironment []EnvironmentVariable
	DefaultPortMapping InstancePortMapping
}

// Editor looks up the editor declared on the given container port.
func (m *Manifest) Editor(containerPort uint16) (Editor, bool) {
	for _, e := range m.Editors {
		if e.Port == containerPort {
			return e, true
		}
	}
	return Editor{}, false
}

// LabelValue returns the value of the named label. The outer bool reports
// whether the label exists at all; the inner pointer is nil for a label
// declared without a value.
func (m *Manifest) LabelValue(name string) (*string, bool) {
	for _, l := range m.Labels {
		if l.Label == name {
			return l.Value, true
		}
	}
	return nil, false
}
