// Package ingest drives provider fetches into the archive: a one-off
// historical backfill and a repeatable "latest" update.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/SS-1985/archive-service/internal/model"
	"github.com/SS-1985/archive-service/pkg/news"
)

// Store persists one item idempotently. Insert reports false for an identity
// that is already archived.
type Store interface {
	Insert(ctx context.Context, item *model.Item) (bool, error)
}

// Publisher announces newly archived items.
type Publisher interface {
	PublishInserted(ctx context.Context, id int64) error
}

type PolygonSource interface {
	Page(ctx context.Context, q news.PolygonQuery) (news.PolygonPage, error)
	Latest(ctx context.Context, limit int) ([]news.PolygonArticle, error)
}

type FMPSource interface {
	Range(ctx context.Context, from, to time.Time) ([]news.FMPPressRelease, error)
	Latest(ctx context.Context, limit int) ([]news.FMPPressRelease, error)
}

// Sink turns one normalized item into an Outcome. A failed item never stops
// the caller's batch.
type Sink struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

// NewSink wires a store. publisher may be nil.
func NewSink(store Store, publisher Publisher, logger *slog.Logger) *Sink {
	return &Sink{store: store, publisher: publisher, logger: logger}
}

func (s *Sink) Put(ctx context.Context, item *model.Item) model.Outcome {
	inserted, err := s.store.Insert(ctx, item)
	if err != nil {
		s.logger.Warn("error saving item", "origin", item.Origin, "external_id", item.ExternalID, "error", err)
		return model.Outcome{Kind: model.OutcomeFailed, Reason: err}
	}

	if !inserted {
		s.logger.Debug("duplicate item skipped", "origin", item.Origin, "external_id", item.ExternalID)
		return model.Outcome{Kind: model.OutcomeDuplicate}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishInserted(ctx, item.ID); err != nil {
			s.logger.Error("error pushing to Redis queue", "origin", item.Origin, "item_id", item.ID, "error", err)
		}
	}

	return model.Outcome{Kind: model.OutcomeInserted}
}
