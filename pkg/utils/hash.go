package utils

import (
	"crypto/md5"
	"fmt"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// DedupKey hashes the leading prefix of a document so near-identical chunks
// retrieved under different query variants collapse to one key.
func DedupKey(document string) string {
	const prefixLen = 150
	if len(document) > prefixLen {
		document = document[:prefixLen]
	}
	return HashString(document)
}
