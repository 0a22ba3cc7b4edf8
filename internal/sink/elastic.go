package sink

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	elastic "gopkg.in/olivere/elastic.v5"
)

// elasticSink writes rows as documents through olivere/elastic's v5
// client, indexed under a fixed Elasticsearch index with the mapping
// name as the document type (v5 predates the removal of mapping types).
type elasticSink struct {
	client *elastic.Client
	index  string
}

func newElasticSink(dsn string) (Sink, error) {
	url, index, err := splitElasticDSN(dsn)
	if err != nil {
		return nil, err
	}

	client, err := elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create elasticsearch client")
	}
	return &elasticSink{client: client, index: index}, nil
}

func (s *elasticSink) Write(ctx context.Context, row *Row) error {
	_, err := s.client.Index().
		Index(s.index).
		Type(row.Mapping).
		BodyJson(row.Fields).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "unable to index row at offset %d", row.Offset)
	}
	return nil
}

func (s *elasticSink) Close() error {
	return nil
}

func splitElasticDSN(dsn string) (url, index string, err error) {
	start := 0
	if i := strings.Index(dsn, "://"); i >= 0 {
		start = i + len("://")
	}
	idx := strings.LastIndex(dsn[start:], "/")
	if idx < 0 || start+idx == len(dsn)-1 {
		return "", "", errors.New("elastic dsn must end in /<index>")
	}
	idx += start
	return dsn[:idx], dsn[idx+1:], nil
}
