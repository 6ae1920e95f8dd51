package document

import "strings"

// DefaultKeyPrefix namespaces every key written by the Redis repositories.
const DefaultKeyPrefix = "docdex:"

// Key returns the hash key of a document.
func Key(prefix, id string) string {
	return prefix + "doc:" + id
}

// Pattern matches every document key under prefix.
func Pattern(prefix string) string {
	return prefix + "doc:*"
}

// IDFromKey extracts the document ID from a document key.
func IDFromKey(prefix, key string) string {
	return strings.TrimPrefix(key, prefix+"doc:")
}
