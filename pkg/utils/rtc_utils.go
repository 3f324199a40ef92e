package utils

// ExtractCandidates extracts candidate strings from the interface slice
func ExtractCandidates(candidates []interface{}) []string {
	var candidateStrs []string
	for _, c := range candidates {
		if candidateStr, ok := c.(string); ok {
			candidateStrs = append(candidateStrs, candidateStr)
		}
	}
	return candidateStrs
}

// ExtractStrings converts a decoded JSON array into a string slice, skipping
// entries of any other type.
func ExtractStrings(values interface{}) []string {
	arr, ok := values.([]interface{})
	if !ok {
		return nil
	}
	return ExtractCandidates(arr)
}
