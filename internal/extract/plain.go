package extract

import "strings"

// parsePlain decodes data as UTF-8, substituting U+FFFD for invalid sequences.
func parsePlain(data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
