package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVFile reads target URLs from the first column of a CSV file, skipping
// the header row.
type CSVFile struct {
	path string
}

// NewCSVFile creates a CSVFile extractor.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (c *CSVFile) Extract(_ context.Context) ([]string, error) {
	file, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", c.path, err)
	}

	var urls []string
	for i, row := range records {
		if i == 0 || len(row) == 0 { // skip header
			continue
		}
		if u := strings.TrimSpace(row[0]); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
