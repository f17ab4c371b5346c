package eventstore

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/transfermarket-backend/internal/domain/aggregates"
	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
	"github.com/yungbote/transfermarket-backend/internal/platform/dbctx"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

const defaultBatchSize = 256

// AppendHook runs synchronously for every appended event, inside the
// append's savepoint. Returning an error rolls the append back.
type AppendHook func(dbc dbctx.Context, ev types.RecordedEvent) error

type AppendResult struct {
	NewVersion int64
	Events     []types.RecordedEvent
}

type Store interface {
	// Append writes events to the stream when its current version equals
	// expectedVersion. It joins dbc.Tx through a savepoint.
	Append(dbc dbctx.Context, streamID uuid.UUID, streamType types.StreamType, expectedVersion int64, events ...types.Event) (AppendResult, error)

	// Load pages through one stream in version order. Each range starts a fresh query.
	Load(dbc dbctx.Context, streamID uuid.UUID) iter.Seq2[types.StoredEvent, error]

	// LoadAfter pages through the whole log in position order. An empty
	// streamType matches every stream.
	LoadAfter(dbc dbctx.Context, position int64, streamType types.StreamType) iter.Seq2[types.StoredEvent, error]

	CurrentVersion(dbc dbctx.Context, streamID uuid.UUID) (int64, error)
}

type Option func(*store)

// WithBatchSize sets how many rows each Load page reads.
func WithBatchSize(n int) Option {
	return func(s *store) {
		if n > 0 {
			s.batch = n
		}
	}
}

type store struct {
	db    *gorm.DB
	log   *logger.Logger
	hook  AppendHook
	batch int
}

func New(db *gorm.DB, baseLog *logger.Logger, hook AppendHook, opts ...Option) Store {
	s := &store{
		db:    db,
		log:   baseLog.With("component", "EventStore"),
		hook:  hook,
		batch: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Append(dbc dbctx.Context, streamID uuid.UUID, streamType types.StreamType, expectedVersion int64, events ...types.Event) (AppendResult, error) {
	const op = "EventStore.Append"
	if streamID == uuid.Nil {
		return AppendResult{}, domainagg.NewError(domainagg.CodeValidation, op, "missing stream id", nil)
	}
	if len(events) == 0 {
		return AppendResult{NewVersion: expectedVersion}, nil
	}
	if dbc.Tx == nil {
		return AppendResult{}, domainagg.NewError(domainagg.CodeInternal, op, "append requires a caller transaction", nil)
	}

	var out AppendResult
	err := dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		var current int64
		if err := tx.Model(&types.StoredEvent{}).
			Select("COALESCE(MAX(version), 0)").
			Where("stream_id = ?", streamID).
			Scan(&current).Error; err != nil {
			return err
		}
		if current != expectedVersion {
			return domainagg.NewError(
				domainagg.CodeConcurrentModification,
				op,
				fmt.Sprintf("stream %s at version %d, expected %d", streamID, current, expectedVersion),
				nil,
			)
		}

		md := metadataFor(dbc.Ctx)
		now := time.Now().UTC()
		rows := make([]types.StoredEvent, 0, len(events))
		for i, ev := range events {
			evType, payload, err := encode(ev)
			if err != nil {
				return domainagg.Wrap(domainagg.CodeValidation, op, err)
			}
			rows = append(rows, types.StoredEvent{
				StreamID:   streamID,
				StreamType: streamType,
				Version:    expectedVersion + int64(i) + 1,
				EventType:  evType,
				Payload:    payload,
				Metadata:   md,
				CreatedAt:  now,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		out.Events = make([]types.RecordedEvent, 0, len(rows))
		for i, row := range rows {
			rec := types.RecordedEvent{
				Position:   row.Position,
				StreamID:   row.StreamID,
				StreamType: row.StreamType,
				Version:    row.Version,
				Type:       row.EventType,
				Event:      types.Deref(events[i]),
				RecordedAt: row.CreatedAt,
			}
			if s.hook != nil {
				if err := s.hook(inner, rec); err != nil {
					return err
				}
			}
			out.Events = append(out.Events, rec)
		}
		out.NewVersion = expectedVersion + int64(len(rows))
		return nil
	})
	if err != nil {
		return AppendResult{}, mapAppendError(op, err)
	}
	return out, nil
}

func mapAppendError(op string, err error) error {
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return domainagg.NewError(domainagg.CodeConcurrentModification, op, "stream version already taken", err)
	}
	return err
}

func (s *store) Load(dbc dbctx.Context, streamID uuid.UUID) iter.Seq2[types.StoredEvent, error] {
	return func(yield func(types.StoredEvent, error) bool) {
		var after int64
		for {
			var rows []types.StoredEvent
			err := dbc.DB(s.db).
				Where("stream_id = ? AND version > ?", streamID, after).
				Order("version ASC").
				Limit(s.batch).
				Find(&rows).Error
			if err != nil {
				yield(types.StoredEvent{}, domainagg.Wrap(domainagg.CodeInfrastructureFailure, "EventStore.Load", err))
				return
			}
			for _, row := range rows {
				if !yield(row, nil) {
					return
				}
				after = row.Version
			}
			if len(rows) < s.batch {
				return
			}
		}
	}
}

func (s *store) LoadAfter(dbc dbctx.Context, position int64, streamType types.StreamType) iter.Seq2[types.StoredEvent, error] {
	return func(yield func(types.StoredEvent, error) bool) {
		after := position
		for {
			var rows []types.StoredEvent
			q := dbc.DB(s.db).Where("position > ?", after)
			if streamType != "" {
				q = q.Where("stream_type = ?", streamType)
			}
			if err := q.Order("position ASC").Limit(s.batch).Find(&rows).Error; err != nil {
				yield(types.StoredEvent{}, domainagg.Wrap(domainagg.CodeInfrastructureFailure, "EventStore.LoadAfter", err))
				return
			}
			for _, row := range rows {
				if !yield(row, nil) {
					return
				}
				after = row.Position
			}
			if len(rows) < s.batch {
				return
			}
		}
	}
}

func (s *store) CurrentVersion(dbc dbctx.Context, streamID uuid.UUID) (int64, error) {
	var v int64
	err := dbc.DB(s.db).
		Model(&types.StoredEvent{}).
		Select("COALESCE(MAX(version), 0)").
		Where("stream_id = ?", streamID).
		Scan(&v).Error
	if err != nil {
		return 0, domainagg.Wrap(domainagg.CodeInfrastructureFailure, "EventStore.CurrentVersion", err)
	}
	return v, nil
}
