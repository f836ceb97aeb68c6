package config

// mergeSettings merges override settings into base
func mergeSettings(base, override *Settings) *Settings {
	result := *base

	if override.Manifest != "" {
		result.Manifest = override.Manifest
	}
	if override.ShimBinary != "" {
		result.ShimBinary = override.ShimBinary
	}
	if len(override.Ignore) > 0 {
		result.Ignore = override.Ignore
	}

	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for k, v := range base.Extensions {
			merged[k] = v
		}
		for key, value := range override.Extensions {
			merged[key] = mergeValue(merged[key], value)
		}
		result.Extensions = merged
	}

	return &result
}

// mergeValue merges nested maps key by key. Any other value in override
// replaces the base value.
func mergeValue(base, override interface{}) interface{} {
	baseMap, baseOk := base.(map[string]interface{})
	overrideMap, overrideOk := override.(map[string]interface{})
	if !baseOk || !overrideOk {
		return override
	}

	merged := make(map[string]interface{}, len(baseMap)+len(overrideMap))
	for k, v := range baseMap {
		merged[k] = v
	}
	for k, v := range overrideMap {
		merged[k] = mergeValue(merged[k], v)
	}
	return merged
}
