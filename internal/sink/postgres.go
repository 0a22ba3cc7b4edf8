package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// postgresSink writes rows via database/sql through lib/pq. The teacher's
// writer.go reached for jackc/pgx/v4/pgxpool instead, but that module was
// never declared in go.mod and nothing else in the tree needs pgx's
// native-protocol pooling; lib/pq gets the same destination.type=postgres
// case onto the database/sql surface the rest of the sinks already share
// through sqlx.
type postgresSink struct {
	db *sqlx.DB
}

func newPostgresSink(dsn string) (Sink, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open postgres connection")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "unable to ping postgres")
	}
	return &postgresSink{db: db}, nil
}

func (s *postgresSink) Write(ctx context.Context, row *Row) error {
	columns, values := columnsAndValues(row.Fields)
	n := 0
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		row.Mapping, strings.Join(columns, ", "),
		placeholders(len(columns), func(i int) string {
			n++
			return "$" + strconv.Itoa(n)
		}))

	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return errors.Wrapf(err, "unable to insert row at offset %d", row.Offset)
	}
	return nil
}

func (s *postgresSink) Close() error {
	return s.db.Close()
}
