package llm

import "slices"

// FindModelInfo returns the first entry whose name or one of whose aliases
// equals name.
func FindModelInfo(list []TextModelInfo, name string) (TextModelInfo, bool) {
	for _, item := range list {
		if item.Name == name || slices.Contains(item.Aliases, name) {
			return item, true
		}
	}
	return TextModelInfo{}, false
}

// ModelRegistry is an ordered, read-only list of model metadata.
type ModelRegistry struct {
	models []TextModelInfo
}

func NewModelRegistry(models ...TextModelInfo) *ModelRegistry {
	r := &ModelRegistry{models: make([]TextModelInfo, 0, len(models))}
	for _, m := range models {
		r.models = append(r.models, m.Clone())
	}
	return r
}

func (r *ModelRegistry) Lookup(name string) (TextModelInfo, bool) {
	if r == nil {
		return TextModelInfo{}, false
	}
	m, ok := FindModelInfo(r.models, name)
	if !ok {
		return TextModelInfo{}, false
	}
	return m.Clone(), true
}

// With returns a registry where extra entries take precedence over the
// existing ones.
func (r *ModelRegistry) With(extra ...TextModelInfo) *ModelRegistry {
	var base []TextModelInfo
	if r != nil {
		base = r.models
	}
	return NewModelRegistry(append(slices.Clone(extra), base...)...)
}

func (r *ModelRegistry) Models() []TextModelInfo {
	if r == nil {
		return nil
	}
	out := make([]TextModelInfo, len(r.models))
	for i, m := range r.models {
		out[i] = m.Clone()
	}
	return out
}
