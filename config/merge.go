package config

// mergeInto deep-merges src into dst. Nested maps merge recursively;
// anything else in src replaces the value in dst.
func mergeInto(dst, src map[string]any) {
	for key, val := range src {
		srcMap, srcIsMap := val.(map[string]any)
		if srcIsMap {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeInto(dstMap, srcMap)
				continue
			}
		}
		dst[key] = val
	}
}
