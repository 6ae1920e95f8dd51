package chunk

import (
	"sort"
	"time"
)

// SortCorpus orders chunks the way every store returns its corpus: by owning document creation time,
// then document ID, then chunk index. documentCreated maps document IDs to their creation time;
// chunks of unknown documents fall back to their own creation time.
func SortCorpus(chunks []Chunk, documentCreated map[string]time.Time) {
	created := func(c *Chunk) time.Time {
		if t, ok := documentCreated[c.documentID]; ok {
			return t
		}
		return c.createdAt
	}
	sort.SliceStable(chunks, func(i, j int) bool {
		a, b := &chunks[i], &chunks[j]
		ta, tb := created(a), created(b)
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		if a.documentID != b.documentID {
			return a.documentID < b.documentID
		}
		return a.index < b.index
	})
}
