package etl

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/logger"
	"github.com/BartekS5/assetimport/pkg/models"
	"github.com/BartekS5/assetimport/pkg/utils"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLLoader stores asset records in a SQL Server table keyed on device_id.
// The full record is kept as a JSON document next to a few query columns.
type SQLLoader struct {
	DB    *sql.DB
	Table string
}

func NewSQLLoader(db *sql.DB, table string) (*SQLLoader, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid SQL table name %q", table)
	}
	return &SQLLoader{DB: db, Table: table}, nil
}

// EnsureTable creates the asset table when it does not exist yet.
func (l *SQLLoader) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`IF OBJECT_ID(N'%[1]s', N'U') IS NULL
CREATE TABLE %[1]s (
	device_id  NVARCHAR(200) NOT NULL PRIMARY KEY,
	device_ref NVARCHAR(36)  NOT NULL,
	name       NVARCHAR(400) NULL,
	stage      NVARCHAR(100) NULL,
	document   NVARCHAR(MAX) NOT NULL,
	updated_at DATETIME2     NOT NULL
)`, l.Table)

	if _, err := l.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", l.Table, err)
	}
	return nil
}

func (l *SQLLoader) Load(ctx context.Context, records []models.Record) (LoadResult, error) {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return LoadResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var res LoadResult
	now := time.Now().UTC()

	for _, rec := range records {
		id := utils.Stringify(rec[schema.DeviceIDPath])
		if id == "" {
			logger.Errorf("Skipping record without %s", schema.DeviceIDPath)
			continue
		}

		doc, err := json.Marshal(rec)
		if err != nil {
			return LoadResult{}, fmt.Errorf("encode record %s: %w", id, err)
		}
		name := utils.Stringify(rec["name"])
		stage := utils.Stringify(rec["stage"])

		var exists int
		checkQuery := fmt.Sprintf("SELECT 1 FROM %s WHERE device_id = @p1", l.Table)
		err = tx.QueryRowContext(ctx, checkQuery, id).Scan(&exists)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			query := fmt.Sprintf("INSERT INTO %s (device_id, device_ref, name, stage, document, updated_at) VALUES (@p1, @p2, @p3, @p4, @p5, @p6)", l.Table)
			if _, err := tx.ExecContext(ctx, query, id, uuid.NewString(), name, stage, string(doc), now); err != nil {
				return LoadResult{}, fmt.Errorf("insert %s: %w", id, err)
			}
			res.Created++
		case err == nil:
			query := fmt.Sprintf("UPDATE %s SET name = @p1, stage = @p2, document = @p3, updated_at = @p4 WHERE device_id = @p5", l.Table)
			if _, err := tx.ExecContext(ctx, query, name, stage, string(doc), now, id); err != nil {
				return LoadResult{}, fmt.Errorf("update %s: %w", id, err)
			}
			res.Updated++
		default:
			return LoadResult{}, fmt.Errorf("error checking row existence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return LoadResult{}, fmt.Errorf("commit transaction: %w", err)
	}
	logger.Infof("SQL Loader: Created %d, Updated %d", res.Created, res.Updated)
	return res, nil
}
