package collector

import "github.com/slotscout/slotscout/internal/centre"

// batchDuplicateRun is the fixed length of consecutive known items that
// flags a whole batch as duplicate. This governs when to stop requesting
// more pages; it is independent of which items eventually get persisted.
const batchDuplicateRun = 3

// keySet indexes centre identities for O(1) membership tests.
type keySet map[string]struct{}

func newKeySet(centres []centre.Centre) keySet {
	s := make(keySet, len(centres))
	s.add(centres)
	return s
}

func (s keySet) add(centres []centre.Centre) {
	for _, c := range centres {
		s[c.Key()] = struct{}{}
	}
}

func (s keySet) contains(c centre.Centre) bool {
	_, ok := s[c.Key()]
	return ok
}

// batchLooksDuplicate walks the batch in extraction order counting
// consecutive items already present in reference; any fresh item resets the
// count. Three in a row flag the batch, even if earlier duplicates were
// interrupted. Extraction order must be preserved by the caller.
func batchLooksDuplicate(batch []centre.Centre, reference keySet) bool {
	if len(batch) == 0 || len(reference) == 0 {
		return false
	}
	run := 0
	for _, c := range batch {
		if reference.contains(c) {
			run++
			if run >= batchDuplicateRun {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
