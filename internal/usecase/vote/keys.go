package vote

// Cache key layout. Throttle and dedup keys share the (identity, category)
// space but have independent lifecycles, so they live under distinct prefixes.

func throttleKey(identity, category string) string {
	return "throttle:" + identity + ":" + category
}

func dedupKey(identity, category string) string {
	return "vote:" + identity + ":" + category
}
