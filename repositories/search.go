package repositories

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"chat-relay/domain"
)

type SearchHit struct {
	MessageID string
	Score     float64
}

// SearchIndex maintains a Bluge full-text index over persisted message
// content. Indexing is best-effort from the delivery path: a failed index
// write never blocks delivery, it only degrades search.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger) *SearchIndex {
	return &SearchIndex{writer: writer, log: log}
}

func (s *SearchIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewKeywordField("sender", message.Sender)).
		AddField(bluge.NewKeywordField("kind", string(message.Kind))).
		AddField(bluge.NewDateTimeField("created_at", message.CreatedAt))
	return s.writer.Update(doc.ID(), doc)
}

// Search runs a match query against message content and returns scored
// message ids, best first.
func (s *SearchIndex) Search(ctx context.Context, terms string, limit int) ([]SearchHit, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn("failed to close index reader", "error", err)
		}
	}()

	query := bluge.NewMatchQuery(terms).SetField("content")
	request := bluge.NewTopNSearch(limit, query)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		hit := SearchHit{Score: match.Score}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				hit.MessageID = string(value)
				return false
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
