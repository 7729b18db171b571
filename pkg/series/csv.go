package series

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultCSVColumn is the header name of the demand column when none is
// configured.
const DefaultCSVColumn = "demand"

// LoadCSV loads a demand series from a CSV file. The file must carry a
// header row; column selects the value column by name (empty uses
// DefaultCSVColumn). When the named column is absent the last column is
// used, so single-column exports load without configuration.
func LoadCSV(filename, column string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, column)
}

// LoadCSVFromReader loads a demand series from an io.Reader of CSV data.
func LoadCSVFromReader(r io.Reader, column string) ([]float64, error) {
	if column == "" {
		column = DefaultCSVColumn
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Spreadsheet exports often carry ragged trailing rows.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	valueIdx := -1
	for i, h := range header {
		if strings.TrimSpace(strings.Trim(h, "\"")) == column {
			valueIdx = i
			break
		}
	}
	if valueIdx == -1 {
		valueIdx = len(header) - 1
	}

	var values []float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if valueIdx >= len(record) {
			continue
		}

		valStr := strings.TrimSpace(strings.Trim(record[valueIdx], "\""))
		if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			continue // Skip invalid values
		}
		values = append(values, val)
	}

	if len(values) == 0 {
		return nil, errors.New("series: no valid data found in CSV")
	}
	return values, nil
}
