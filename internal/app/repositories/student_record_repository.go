package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/yigit/allotment/internal/app/models"
	"github.com/yigit/allotment/internal/db"
	"github.com/yigit/allotment/internal/pkg/dberrors"
	"github.com/yigit/allotment/internal/pkg/logger"
)

const studentsTable = "students"

// insertColumns lists the writable columns in the order recordValues emits them
var insertColumns = []string{"idno", "name", "branch", "year", "semester", "subject", "subject_code", "type", "oclass"}

var selectColumns = append([]string{"id"}, insertColumns...)

// DBTX is the subset of *pgxpool.Pool used by the repositories
type DBTX interface {
	db.TxBeginner
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IStudentRecordRepository is the record store
type IStudentRecordRepository interface {
	GetAll(ctx context.Context) ([]*models.StudentRecord, error)
	Create(ctx context.Context, record *models.StudentRecord) (int64, error)
	CreateBatch(ctx context.Context, records []*models.StudentRecord) (int64, error)
	DeleteByIDNo(ctx context.Context, idno string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	FindByIDNo(ctx context.Context, idno string) ([]*models.StudentRecord, error)
}

// StudentRecordRepository handles student record database operations
type StudentRecordRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewStudentRecordRepository creates a new StudentRecordRepository
func NewStudentRecordRepository(db DBTX) *StudentRecordRepository {
	return &StudentRecordRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// NormalizeRecord returns the stored form of r: every classification field
// and idno trimmed of surrounding whitespace, name always empty.
func NormalizeRecord(r *models.StudentRecord) models.StudentRecord {
	return models.StudentRecord{
		IDNo:        strings.TrimSpace(r.IDNo),
		Name:        "",
		Branch:      strings.TrimSpace(r.Branch),
		Year:        strings.TrimSpace(r.Year),
		Semester:    strings.TrimSpace(r.Semester),
		Subject:     strings.TrimSpace(r.Subject),
		SubjectCode: strings.TrimSpace(r.SubjectCode),
		Type:        strings.TrimSpace(r.Type),
		OClass:      strings.TrimSpace(r.OClass),
	}
}

// statementFailed starts an error log entry for a failed statement, with a
// hint when the schema has not been migrated
func statementFailed(err error) *zerolog.Event {
	event := logger.Error().Err(err)
	if dberrors.IsUndefinedTable(err) {
		event = event.Str("hint", "students table missing, run allotctl migrate")
	}
	return event
}

func recordValues(r models.StudentRecord) []any {
	return []any{r.IDNo, r.Name, r.Branch, r.Year, r.Semester, r.Subject, r.SubjectCode, r.Type, r.OClass}
}

func (r *StudentRecordRepository) selectRecords() squirrel.SelectBuilder {
	return r.sb.Select(selectColumns...).From(studentsTable).OrderBy("id ASC")
}

// GetAll returns every record in storage order
func (r *StudentRecordRepository) GetAll(ctx context.Context) ([]*models.StudentRecord, error) {
	sql, args, err := r.selectRecords().ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get all records SQL")
		return nil, fmt.Errorf("failed to build get all records query: %w", err)
	}

	return r.queryRecords(ctx, sql, args...)
}

// FindByIDNo returns the records whose idno equals idno exactly, in storage
// order. No match yields an empty slice and a nil error.
func (r *StudentRecordRepository) FindByIDNo(ctx context.Context, idno string) ([]*models.StudentRecord, error) {
	sql, args, err := r.selectRecords().
		Where(squirrel.Eq{"idno": idno}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building find records by idno SQL")
		return nil, fmt.Errorf("failed to build find records query: %w", err)
	}

	return r.queryRecords(ctx, sql, args...)
}

func (r *StudentRecordRepository) queryRecords(ctx context.Context, sql string, args ...any) ([]*models.StudentRecord, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		statementFailed(err).Msg("Error executing student records query")
		return nil, fmt.Errorf("error querying student records: %w", err)
	}
	defer rows.Close()

	records := []*models.StudentRecord{}
	for rows.Next() {
		rec := &models.StudentRecord{}
		if err := rows.Scan(&rec.ID, &rec.IDNo, &rec.Name, &rec.Branch, &rec.Year, &rec.Semester,
			&rec.Subject, &rec.SubjectCode, &rec.Type, &rec.OClass); err != nil {
			logger.Error().Err(err).Msg("Error scanning student record row")
			return nil, fmt.Errorf("error scanning student record row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student record rows")
		return nil, fmt.Errorf("error iterating student record rows: %w", err)
	}

	return records, nil
}

// Create stores one normalized record and returns its id
func (r *StudentRecordRepository) Create(ctx context.Context, record *models.StudentRecord) (int64, error) {
	sql, args, err := r.sb.Insert(studentsTable).
		Columns(insertColumns...).
		Values(recordValues(NormalizeRecord(record))...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create record SQL")
		return 0, fmt.Errorf("failed to build create record query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		statementFailed(err).Msg("Error executing create record query")
		return 0, fmt.Errorf("error creating student record: %w", err)
	}

	return id, nil
}

// CreateBatch stores all records in one transaction. Either every record is
// committed or none is.
func (r *StudentRecordRepository) CreateBatch(ctx context.Context, records []*models.StudentRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var copied int64
	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		source := pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return recordValues(NormalizeRecord(records[i])), nil
		})

		n, err := tx.CopyFrom(ctx, pgx.Identifier{studentsTable}, insertColumns, source)
		if err != nil {
			return fmt.Errorf("error copying student records: %w", err)
		}
		if n != int64(len(records)) {
			return fmt.Errorf("copied %d of %d student records", n, len(records))
		}
		copied = n
		return nil
	})
	if err != nil {
		statementFailed(err).Int("records", len(records)).Msg("Batch insert rolled back")
		return 0, err
	}

	return copied, nil
}

// DeleteByIDNo removes every record whose idno equals idno exactly. Zero
// matches is not an error.
func (r *StudentRecordRepository) DeleteByIDNo(ctx context.Context, idno string) (int64, error) {
	sql, args, err := r.sb.Delete(studentsTable).
		Where(squirrel.Eq{"idno": idno}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete records by idno SQL")
		return 0, fmt.Errorf("failed to build delete records query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		statementFailed(err).Str("idno", idno).Msg("Error executing delete records query")
		return 0, fmt.Errorf("error deleting student records: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// DeleteAll empties the store in a single transaction
func (r *StudentRecordRepository) DeleteAll(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete(studentsTable).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete all records SQL")
		return 0, fmt.Errorf("failed to build delete all records query: %w", err)
	}

	var deleted int64
	err = db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error deleting all student records: %w", err)
		}
		deleted = cmdTag.RowsAffected()
		return nil
	})
	if err != nil {
		statementFailed(err).Msg("Error executing delete all records")
		return 0, err
	}

	return deleted, nil
}
