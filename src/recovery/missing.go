package recovery

// Returns token ids in [0, upTo) that are absent from existing, ascending.
// existing must be sorted ascending, which the query guarantees.
func missingTokenIds(existing []int64, upTo int64) (missing []int64) {
	i := 0
	for id := int64(0); id < upTo; id++ {
		for i < len(existing) && existing[i] < id {
			i++
		}
		if i < len(existing) && existing[i] == id {
			continue
		}
		missing = append(missing, id)
	}
	return
}
