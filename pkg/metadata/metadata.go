// Package metadata signs generated reports with a trailing provenance block
// and verifies that the report body was not edited afterwards.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "<!-- REPORT_METADATA"
	// TagEnd is the end of the metadata block.
	TagEnd = "REPORT_METADATA -->"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes the run that produced a report.
type Metadata struct {
	RunID       string
	Source      string
	Records     int
	GeneratedAt time.Time
	Hash        string
}

var metadataRegex = regexp.MustCompile(`(?s)\n*<!--\s*REPORT_METADATA\s*\n(.*?)\n\s*REPORT_METADATA\s*-->\n*`)

// Extract removes the metadata block from content and returns both the metadata and the body.
// The body is what gets hashed.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	clean := strings.TrimRight(metadataRegex.ReplaceAllString(content, ""), "\n")

	if len(match) < 2 {
		return nil, clean
	}

	meta := &Metadata{}

	for _, line := range strings.Split(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		val = strings.TrimSpace(val)

		switch strings.TrimSpace(key) {
		case "RUN_ID":
			meta.RunID = val
		case "SOURCE":
			meta.Source = val
		case "RECORDS":
			if n, err := strconv.Atoi(val); err == nil {
				meta.Records = n
			}
		case "GENERATED_AT":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.GeneratedAt = t
			}
		case "HASH":
			meta.Hash = val
		}
	}

	return meta, clean
}

// CalculateHash computes the SHA-256 hash of the body (excluding metadata).
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Sign replaces any metadata block on content with a fresh one carrying meta
// and the body hash. A zero GeneratedAt is set to the current time.
func Sign(content string, meta Metadata) string {
	_, clean := Extract(content)

	generatedAt := meta.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	block := fmt.Sprintf("\n\n%s\nRUN_ID: %s\nSOURCE: %s\nRECORDS: %d\nGENERATED_AT: %s\nHASH: %s\n%s\n",
		TagStart, meta.RunID, meta.Source, meta.Records,
		generatedAt.UTC().Format(time.RFC3339), CalculateHash(clean), TagEnd)

	return clean + block
}

// Verify checks if the content matches the hash in its metadata.
func Verify(content string) (bool, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return false, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return true, nil
}
