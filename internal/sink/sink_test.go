package sink

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsAndValuesOrderingIsConsistent(t *testing.T) {
	fields := map[string]interface{}{
		"id":    1,
		"name":  "alice",
		"email": "alice@example.com",
	}

	columns, values := columnsAndValues(fields)
	require.Len(t, columns, len(fields))
	require.Len(t, values, len(fields))

	assert.Equal(t, []string{"email", "id", "name"}, columns)
	for i, c := range columns {
		assert.Equal(t, fields[c], values[i])
	}
}

func TestPlaceholders(t *testing.T) {
	got := placeholders(3, func(i int) string { return "?" })
	assert.Equal(t, "?, ?, ?", got)

	n := 0
	got = placeholders(3, func(i int) string {
		n++
		return "$" + strconv.Itoa(n)
	})
	assert.Equal(t, "$1, $2, $3", got)

	assert.Equal(t, "", placeholders(0, func(i int) string { return "?" }))
}

func TestSplitMongoDSN(t *testing.T) {
	database, uri, err := splitMongoDSN("mongodb://127.0.0.1:27017/migrations")
	require.NoError(t, err)
	assert.Equal(t, "migrations", database)
	assert.Equal(t, "mongodb://127.0.0.1:27017", uri)

	_, _, err = splitMongoDSN("mongodb://127.0.0.1:27017")
	assert.Error(t, err)

	_, _, err = splitMongoDSN("mongodb://127.0.0.1:27017/")
	assert.Error(t, err)
}

func TestSplitCassandraDSN(t *testing.T) {
	hosts, keyspace, err := splitCassandraDSN("10.0.0.1,10.0.0.2/migrations")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, hosts)
	assert.Equal(t, "migrations", keyspace)

	_, _, err = splitCassandraDSN("10.0.0.1")
	assert.Error(t, err)
}

func TestSplitElasticDSN(t *testing.T) {
	url, index, err := splitElasticDSN("http://127.0.0.1:9200/migrations")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9200", url)
	assert.Equal(t, "migrations", index)

	_, _, err = splitElasticDSN("http://127.0.0.1:9200")
	assert.Error(t, err)
}

func TestRedisRowKey(t *testing.T) {
	assert.Equal(t, "users:42", redisRowKey("users", 42))
}

func TestNewUnsupportedDestinationType(t *testing.T) {
	_, err := New("carrier-pigeon", "dsn")
	assert.Error(t, err)
}
