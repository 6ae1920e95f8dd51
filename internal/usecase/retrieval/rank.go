package retrieval

import (
	"sort"

	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	"github.com/kailas-cloud/docdex/internal/domain/keyword"
	"github.com/kailas-cloud/docdex/internal/domain/search/result"
)

// Rank scores every chunk against the query keywords and sorts by descending score.
// Equal scores keep corpus order.
func Rank(query keyword.Set, chunks []domchunk.Chunk) []result.Scored {
	scored := make([]result.Scored, len(chunks))
	for i, c := range chunks {
		scored[i] = result.NewScored(c, keyword.Similarity(query, c.Keywords()))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score() > scored[j].Score()
	})
	return scored
}
