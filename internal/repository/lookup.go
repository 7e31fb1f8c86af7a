// Package repository provides data access for studies, posts and the
// interaction log. Every lookup returns the row, a NOT_FOUND or INVALID_ID
// AppError, or a BACKEND_ERROR / CONSTRAINT_VIOLATION wrapping the driver error.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres SQLSTATE codes for integrity violations.
const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

// table bundles what every repository needs to talk to one table.
type table struct {
	db       *gorm.DB
	name     string
	resource string
	log      *observability.RepoLogger
}

func newTable(db *gorm.DB, name, resource string, opts []Option) table {
	o := applyOptions(opts)
	return table{
		db:       db,
		name:     name,
		resource: resource,
		log:      observability.NewRepoLogger(o.logger, name),
	}
}

func (t table) withTx(tx *gorm.DB) table {
	t.db = tx
	return t
}

// fail classifies err, logs it and counts it.
func (t table) fail(ctx context.Context, operation string, err error) error {
	classified := classify(t.db, t.resource, operation, err)
	t.log.LogError(ctx, err, operation)
	observability.RepositoryErrors.WithLabelValues(t.name, models.ErrorCode(classified)).Inc()
	return classified
}

// create inserts value without touching its associations: referenced rows
// must already exist.
func (t table) create(ctx context.Context, value any, fields map[string]interface{}) error {
	defer observability.TrackQuery("create", t.name)()
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error; err != nil {
		return t.fail(ctx, "create", err)
	}
	t.log.LogCreate(ctx, fields)
	return nil
}

// updateColumns sets values on the row id of model's table.
func (t table) updateColumns(ctx context.Context, operation string, model any, id uint, values map[string]interface{}) error {
	if err := requireID(t.resource, id); err != nil {
		return err
	}
	defer observability.TrackQuery(operation, t.name)()

	res := t.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return t.fail(ctx, operation, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(t.resource, id)
	}
	return nil
}

// preload applies a typed set of associations to q.
func preload[J ~string](q *gorm.DB, joins []J) *gorm.DB {
	seen := make(map[J]struct{}, len(joins))
	for _, j := range joins {
		if _, dup := seen[j]; dup {
			continue
		}
		seen[j] = struct{}{}
		q = q.Preload(string(j))
	}
	return q
}

// lookup fetches one row of T by primary key with the given associations.
// id must be positive; no query is issued otherwise.
func lookup[T any, J ~string](ctx context.Context, t table, id uint, joins []J) (*T, error) {
	if id == 0 {
		return nil, models.NewInvalidIDError(t.resource, id)
	}

	defer observability.TrackQuery("get_by_id", t.name)()

	var row T
	err := preload(t.db.WithContext(ctx), joins).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError(t.resource, id)
	}
	if err != nil {
		return nil, t.fail(ctx, "get_by_id", err)
	}
	return &row, nil
}

// list runs a filtered collection query. An empty result is not an error.
func list[T any, J ~string](ctx context.Context, t table, operation string, joins []J, scope func(*gorm.DB) *gorm.DB) ([]*T, error) {
	defer observability.TrackQuery(operation, t.name)()

	rows := make([]*T, 0)
	q := preload(t.db.WithContext(ctx), joins)
	if scope != nil {
		q = scope(q)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, t.fail(ctx, operation, err)
	}
	return rows, nil
}

// requireID is the shared precondition of every id-filtered query.
func requireID(resource string, id uint) error {
	if id == 0 {
		return models.NewInvalidIDError(resource, id)
	}
	return nil
}

func classify(db *gorm.DB, resource, operation string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, models.ErrAppendOnly) {
		return &models.AppError{Code: models.CodeValidation, Message: resource + " rows cannot be changed", Err: err}
	}
	if isConstraintViolation(db, err) {
		return models.NewConstraintError(resource, err)
	}
	return models.NewBackendError(resource, operation, err)
}

// isConstraintViolation recognises integrity failures from the dialector's
// own translator, pgx error codes and SQLite messages.
func isConstraintViolation(db *gorm.DB, err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	if db != nil && db.Dialector != nil {
		if translator, ok := db.Dialector.(gorm.ErrorTranslator); ok {
			translated := translator.Translate(err)
			if errors.Is(translated, gorm.ErrForeignKeyViolated) || errors.Is(translated, gorm.ErrCheckConstraintViolated) {
				return true
			}
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgCheckViolation, pgNotNullViolation:
			return true
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed") ||
		strings.Contains(msg, "NOT NULL constraint failed")
}

func fieldsOf(pairs ...any) map[string]interface{} {
	out := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return out
}
