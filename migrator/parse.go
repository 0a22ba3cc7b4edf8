package migrator

import (
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dselans/gzmigrate/config"
)

// parseLine decodes one source line into a field-name-keyed map per
// source.file_contents, ahead of applying a destination mapping to it.
func parseLine(fileContents, line string) (map[string]interface{}, error) {
	switch fileContents {
	case "json":
		return parseJSONLine(line)
	case "bson":
		return parseBSONLine(line)
	case "csv":
		return parseCSVLine(line)
	default:
		return nil, errors.Errorf("unsupported source.file_contents '%s'", fileContents)
	}
}

func parseJSONLine(line string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal json line")
	}
	return out, nil
}

func parseBSONLine(line string) (map[string]interface{}, error) {
	var out bson.M
	if err := bson.UnmarshalExtJSON([]byte(line), false, &out); err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal bson line")
	}
	return out, nil
}

// parseCSVLine has no header to name columns against, so fields are keyed
// positionally ("0", "1", ...) - mapping entries for csv sources are
// expected to use those as src names.
func parseCSVLine(line string) (map[string]interface{}, error) {
	r := csv.NewReader(strings.NewReader(line))
	fields, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse csv line")
	}

	out := make(map[string]interface{}, len(fields))
	for i, f := range fields {
		out[strconv.Itoa(i)] = f
	}
	return out, nil
}

// applyMapping converts a parsed source row into destination field names
// and types, per a single named mapping's entries.
func applyMapping(src map[string]interface{}, entries []*config.TOMLMappingEntry) (map[string]interface{}, error) {
	dst := make(map[string]interface{}, len(entries))

	for _, e := range entries {
		raw, ok := src[e.Src]
		if !ok {
			if e.Required {
				return nil, errors.Errorf("required source field '%s' missing", e.Src)
			}
			continue
		}

		converted, err := convert(raw, e.Conv)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to convert field '%s'", e.Src)
		}

		dst[e.Dst] = converted
	}

	return dst, nil
}
