package chunk

import "strconv"

// Key returns the hash key of a chunk.
func Key(prefix, documentID string, index int) string {
	return prefix + "chunk:" + documentID + ":" + strconv.Itoa(index)
}

// Pattern matches every chunk key under prefix.
func Pattern(prefix string) string {
	return prefix + "chunk:*"
}

// DocumentPattern matches the chunk keys of one document. Document IDs never contain glob
// metacharacters.
func DocumentPattern(prefix, documentID string) string {
	return prefix + "chunk:" + documentID + ":*"
}
