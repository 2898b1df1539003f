package crawler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"apdados/internal/models"

	"github.com/klauspost/compress/gzip"
)

// SaveRecordsJSON writes the scraped rows as an indented JSON array.
// Paths ending in .gz are gzip compressed. Parent directories are created.
func SaveRecordsJSON(records []models.RawRecord, outputPath string) error {
	if records == nil {
		records = []models.RawRecord{}
	}

	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if isGzipPath(outputPath) {
		var buf bytes.Buffer

		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(jsonData); err != nil {
			return fmt.Errorf("failed to compress JSON: %w", err)
		}

		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to compress JSON: %w", err)
		}

		jsonData = buf.Bytes()
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// LoadRecordsJSON reads rows written by SaveRecordsJSON, or any JSON array of
// objects using the same keys. Keys that are missing load as blank fields.
func LoadRecordsJSON(inputPath string) ([]models.RawRecord, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", inputPath, err)
	}
	defer f.Close()

	var reader io.Reader = f

	if isGzipPath(inputPath) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", inputPath, err)
		}
		defer zr.Close()

		reader = zr
	}

	var records []models.RawRecord
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", inputPath, err)
	}

	return records, nil
}

func isGzipPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}
