package anthropic

// BuildCachedSystemBlocks returns text as a single system block with a
// one-hour cache breakpoint. The appraisal instructions are identical for
// every summary, so repeat calls in a batch read them from cache.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{{
		Text:         text,
		CacheControl: &CacheControl{TTL: "1h"},
	}}
}
