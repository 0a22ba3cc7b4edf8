package sink

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// redisSink writes each row as a JSON-encoded value under a key derived
// from its mapping name and source offset, through go-redis's v6 client
// (the only redis client in the dependency pack).
type redisSink struct {
	client *redis.Client
}

func newRedisSink(dsn string) (Sink, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse redis dsn")
	}

	client := redis.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		return nil, errors.Wrap(err, "unable to ping redis")
	}
	return &redisSink{client: client}, nil
}

func (s *redisSink) Write(ctx context.Context, row *Row) error {
	data, err := json.Marshal(row.Fields)
	if err != nil {
		return errors.Wrapf(err, "unable to marshal row at offset %d", row.Offset)
	}

	key := redisRowKey(row.Mapping, row.Offset)
	if err := s.client.Set(key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "unable to write row at offset %d", row.Offset)
	}
	return nil
}

func (s *redisSink) Close() error {
	return s.client.Close()
}

func redisRowKey(mapping string, offset int64) string {
	return mapping + ":" + strconv.FormatInt(offset, 10)
}
