package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
)

// cassandraSink writes rows through gocql, one session shared across all
// writes. DSN is a comma-separated host list followed by /<keyspace>,
// e.g. "10.0.0.1,10.0.0.2/migrations".
type cassandraSink struct {
	session *gocql.Session
}

func newCassandraSink(dsn string) (Sink, error) {
	hosts, keyspace, err := splitCassandraDSN(dsn)
	if err != nil {
		return nil, err
	}

	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create cassandra session")
	}
	return &cassandraSink{session: session}, nil
}

func (s *cassandraSink) Write(ctx context.Context, row *Row) error {
	columns, values := columnsAndValues(row.Fields)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		row.Mapping, strings.Join(columns, ", "),
		placeholders(len(columns), func(i int) string { return "?" }))

	if err := s.session.Query(query, values...).WithContext(ctx).Exec(); err != nil {
		return errors.Wrapf(err, "unable to insert row at offset %d", row.Offset)
	}
	return nil
}

func (s *cassandraSink) Close() error {
	s.session.Close()
	return nil
}

func splitCassandraDSN(dsn string) (hosts []string, keyspace string, err error) {
	idx := strings.LastIndex(dsn, "/")
	if idx < 0 || idx == len(dsn)-1 {
		return nil, "", errors.New("cassandra dsn must end in /<keyspace>")
	}
	return strings.Split(dsn[:idx], ","), dsn[idx+1:], nil
}
