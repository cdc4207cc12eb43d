package health

import "reflect"

// Merge deep-merges src into dst and returns dst, allocating it when nil.
// Nested mappings are merged recursively. Any map keyed by strings counts
// as a mapping, so typed maps such as map[string]string merge too. Any
// other value at a colliding key, slices included, is replaced by the value
// from src. src is never modified and nested mappings from src are copied
// before insertion.
func Merge(dst, src Details) Details {
	if dst == nil {
		dst = make(Details, len(src))
	}
	mergeInto(dst, src)
	return dst
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		srcMap, ok := asMap(v)
		if !ok {
			dst[k] = v
			continue
		}
		if dstMap, ok := asMap(dst[k]); ok {
			mergeInto(dstMap, srcMap)
			if !isGenericMap(dst[k]) {
				// asMap returned a converted copy of a typed map.
				dst[k] = dstMap
			}
			continue
		}
		dst[k] = cloneMap(srcMap)
	}
}

// asMap returns v as a generic mapping. Details and map[string]any are
// returned as is; other string-keyed maps are converted into a new
// map[string]any.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Details:
		return m, m != nil
	case map[string]any:
		return m, m != nil
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func isGenericMap(v any) bool {
	switch v.(type) {
	case Details, map[string]any:
		return true
	default:
		return false
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := asMap(v); ok {
			out[k] = cloneMap(m)
			continue
		}
		out[k] = v
	}
	return out
}
