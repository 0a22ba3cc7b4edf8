package migrator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// convert coerces a raw decoded field value to the type named by a
// mapping entry's conv setting (config.validConvs).
func convert(raw interface{}, conv string) (interface{}, error) {
	switch conv {
	case "string":
		return toString(raw), nil
	case "int":
		return toInt(raw)
	case "float":
		return toFloat(raw)
	case "bool":
		return toBool(raw)
	case "time", "timestamp":
		return toTime(raw)
	case "date":
		t, err := toTime(raw)
		if err != nil {
			return nil, err
		}
		return t.Format("2006-01-02"), nil
	case "json":
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, errors.Wrap(err, "unable to marshal value as json")
		}
		return string(data), nil
	default:
		return nil, errors.Errorf("unsupported conv '%s'", conv)
	}
}

func toString(raw interface{}) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}

func toInt(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, errors.Errorf("cannot convert %T to int", raw)
	}
}

func toFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, errors.Errorf("cannot convert %T to float", raw)
	}
}

func toBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, errors.Errorf("cannot convert %T to bool", raw)
	}
}

func toTime(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, errors.Errorf("unable to parse time value '%s'", v)
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	default:
		return time.Time{}, errors.Errorf("cannot convert %T to time", raw)
	}
}
