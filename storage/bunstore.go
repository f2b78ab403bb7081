package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	session "github.com/kentecode/go-session"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// SessionRecord is the single-row-per-key table backing the bun storage
type SessionRecord struct {
	bun.BaseModel `bun:"table:session_records,alias:sr"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Bun is a Storage backed by a bun database, the durable local equivalent of
// browser storage. SQLite is the expected dialect but any bun.DB works.
type Bun struct {
	db *bun.DB
}

var _ session.Storage = (*Bun)(nil)

// NewBun wraps an existing bun database
func NewBun(db *bun.DB) *Bun {
	return &Bun{db: db}
}

// OpenSQLite opens (or creates) a SQLite-backed storage at path. Use
// ":memory:" for tests.
func OpenSQLite(path string) (*Bun, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to open sqlite session db")
	}

	return NewBun(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// Init creates the backing table when missing
func (b *Bun) Init(ctx context.Context) error {
	_, err := b.db.NewCreateTable().
		Model((*SessionRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create session table")
	}
	return nil
}

func (b *Bun) Get(ctx context.Context, key string) ([]byte, error) {
	record := new(SessionRecord)
	err := b.db.NewSelect().
		Model(record).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNoRecord
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "session record read failed")
	}

	return record.Value, nil
}

func (b *Bun) Set(ctx context.Context, key string, value []byte) error {
	record := &SessionRecord{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	_, err := b.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "session record write failed")
	}
	return nil
}

func (b *Bun) Delete(ctx context.Context, key string) error {
	_, err := b.db.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "session record delete failed")
	}
	return nil
}

// Close releases the underlying database
func (b *Bun) Close() error {
	return b.db.Close()
}
