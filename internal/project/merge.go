package project

import "sort"

// DeepMerge merges override sections into a base mapping, in place, and
// returns the names of the top-level sections it touched.
//
// Merge rule (shared by the persisted override layer and the ad-hoc
// caller layer): when both sides of a key are mappings, keys merge
// recursively with the override winning on conflicting leaves; when
// either side is a scalar or a list, the override replaces outright.
func DeepMerge(base map[string]any, override map[string]any) []string {
	touched := make([]string, 0, len(override))
	for section, value := range override {
		mergeValue(base, section, value)
		touched = append(touched, section)
	}
	sort.Strings(touched)
	return touched
}

func mergeValue(dst map[string]any, key string, value any) {
	overrideMap, overrideIsMap := asStringMap(value)
	baseMap, baseIsMap := asStringMap(dst[key])
	if overrideIsMap && baseIsMap {
		for k, v := range overrideMap {
			mergeValue(baseMap, k, v)
		}
		dst[key] = baseMap
		return
	}
	dst[key] = value
}

// asStringMap normalizes the mapping shapes YAML and JSON decoders
// produce into map[string]any.
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}
