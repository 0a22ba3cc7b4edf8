// Package sink writes decoded migration rows to a destination system.
// Grounded on migrator/writer.go's original single-destination
// (postgres-only) writeJob, generalized to one Sink implementation per
// config.TOMLDestination.Type so every database-shaped dependency in
// go.mod is exercised by a concrete component.
package sink

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Row is a single decoded record ready to be written to a destination,
// keyed by the mapping name that produced it (config.TOMLMapping's map
// key) with already-converted field values.
type Row struct {
	Mapping string
	Fields  map[string]interface{}
	Offset  int64
}

// Sink writes Rows to a destination system.
type Sink interface {
	Write(ctx context.Context, row *Row) error
	Close() error
}

// New constructs the Sink named by destinationType, per
// config.go's validateTOMLDestination case list.
func New(destinationType, dsn string) (Sink, error) {
	switch destinationType {
	case "mysql":
		return newMySQLSink(dsn)
	case "postgres":
		return newPostgresSink(dsn)
	case "mongo":
		return newMongoSink(dsn)
	case "redis":
		return newRedisSink(dsn)
	case "cassandra":
		return newCassandraSink(dsn)
	case "elastic":
		return newElasticSink(dsn)
	default:
		return nil, errors.Errorf("unsupported destination type %q", destinationType)
	}
}

// columnsAndValues returns a row's field names and values in a fixed,
// deterministic order, so a caller building "(col1, col2) VALUES (?, ?)"
// style SQL can rely on the Nth column matching the Nth value - map
// iteration order alone would not guarantee that across separate passes.
func columnsAndValues(fields map[string]interface{}) (columns []string, values []interface{}) {
	columns = make([]string, 0, len(fields))
	for k := range fields {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	values = make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = fields[c]
	}
	return columns, values
}

func placeholders(n int, format func(i int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = format(i)
	}
	return strings.Join(parts, ", ")
}
