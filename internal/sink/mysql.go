package sink

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// mysqlSink writes rows via database/sql through go-sql-driver/mysql,
// with queries built through sqlx like the teacher's writer.go used for
// its connection pool.
type mysqlSink struct {
	db *sqlx.DB
}

func newMySQLSink(dsn string) (Sink, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open mysql connection")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "unable to ping mysql")
	}
	return &mysqlSink{db: db}, nil
}

func (s *mysqlSink) Write(ctx context.Context, row *Row) error {
	columns, values := columnsAndValues(row.Fields)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		row.Mapping, strings.Join(columns, ", "),
		placeholders(len(columns), func(i int) string { return "?" }))

	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return errors.Wrapf(err, "unable to insert row at offset %d", row.Offset)
	}
	return nil
}

func (s *mysqlSink) Close() error {
	return s.db.Close()
}
