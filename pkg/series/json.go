package series

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultJSONPath extracts the demand field from an array of monthly
// records, e.g. [{"month": "2024-01", "demand": 120}, ...].
const DefaultJSONPath = "#.demand"

// LoadJSON loads a demand series from a JSON file. path is a gjson
// expression selecting the observations (empty uses DefaultJSONPath); use
// "#" for arrays, e.g. "data.#.value" extracts all values from a data array.
func LoadJSON(filename, path string) ([]float64, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return LoadJSONBytes(data, path)
}

// LoadJSONBytes extracts a demand series from raw JSON. Numeric strings are
// parsed; null and non-numeric entries are skipped.
func LoadJSONBytes(data []byte, path string) ([]float64, error) {
	if path == "" {
		path = DefaultJSONPath
	}

	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return nil, fmt.Errorf("series: value path %q not found in JSON", path)
	}

	var values []float64
	for _, r := range result.Array() {
		switch r.Type {
		case gjson.Number:
			values = append(values, r.Num)
		case gjson.String:
			v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("series: no valid data found in JSON at path %q", path)
	}
	return values, nil
}
