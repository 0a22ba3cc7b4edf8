package sink

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoSink writes rows as documents through the official mongo-driver.
// DSN is expected in the form "mongodb://host/database" - splitMongoDSN
// below pulls the last path segment off as the database name. The
// collection is the Row's mapping name (the table-shaped sinks use that
// name as a SQL table; here it becomes a collection within a fixed
// database).
type mongoSink struct {
	client *mongo.Client
	db     *mongo.Database
}

func newMongoSink(dsn string) (Sink, error) {
	database, uri, err := splitMongoDSN(dsn)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to mongo")
	}
	if err := client.Ping(context.Background(), nil); err != nil {
		return nil, errors.Wrap(err, "unable to ping mongo")
	}

	return &mongoSink{client: client, db: client.Database(database)}, nil
}

func (s *mongoSink) Write(ctx context.Context, row *Row) error {
	_, err := s.db.Collection(row.Mapping).InsertOne(ctx, row.Fields)
	if err != nil {
		return errors.Wrapf(err, "unable to insert row at offset %d", row.Offset)
	}
	return nil
}

func (s *mongoSink) Close() error {
	return s.client.Disconnect(context.Background())
}

// splitMongoDSN pulls the database name off the end of a mongodb:// URI's
// path, returning the database name and the URI with that path stripped
// so it can still be passed to options.Client().ApplyURI.
func splitMongoDSN(dsn string) (database, uri string, err error) {
	start := 0
	if i := strings.Index(dsn, "://"); i >= 0 {
		start = i + len("://")
	}
	idx := strings.LastIndex(dsn[start:], "/")
	if idx < 0 || start+idx == len(dsn)-1 {
		return "", "", errors.New("mongo dsn must end in /<database>")
	}
	idx += start
	return dsn[idx+1:], dsn[:idx], nil
}
