package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/allotment/internal/app/models"
	"github.com/yigit/allotment/internal/app/repositories"
	"github.com/yigit/allotment/internal/pkg/apperrors"
	"github.com/yigit/allotment/internal/pkg/csvimport"
	"github.com/yigit/allotment/internal/pkg/filestorage"
)

// DefaultMaxUploadSize is used when RecordServiceConfig.MaxUploadSize is unset
const DefaultMaxUploadSize int64 = 10 << 20

// RecordService defines operations on student allotment records
type RecordService interface {
	ListRecords(ctx context.Context) ([]*models.StudentRecord, error)
	ImportCSV(ctx context.Context, filename string, r io.Reader) (int, error)
	ImportUpload(ctx context.Context, file *multipart.FileHeader) (int, error)
	DeleteByIDNo(ctx context.Context, idno string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	LookupByIDNo(ctx context.Context, idno string) ([]*models.StudentRecord, error)
}

// RecordServiceConfig holds import limits
type RecordServiceConfig struct {
	MaxUploadSize int64
}

// recordServiceImpl implements RecordService
type recordServiceImpl struct {
	recordRepo repositories.IStudentRecordRepository
	storage    filestorage.FileStorage
	config     RecordServiceConfig
	logger     zerolog.Logger
}

// NewRecordService creates a new RecordService
func NewRecordService(
	recordRepo repositories.IStudentRecordRepository,
	storage filestorage.FileStorage,
	config RecordServiceConfig,
	logger zerolog.Logger,
) RecordService {
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultMaxUploadSize
	}
	return &recordServiceImpl{
		recordRepo: recordRepo,
		storage:    storage,
		config:     config,
		logger:     logger.With().Str("component", "record_service").Logger(),
	}
}

// ListRecords returns every stored record in storage order
func (s *recordServiceImpl) ListRecords(ctx context.Context) ([]*models.StudentRecord, error) {
	records, err := s.recordRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list student records")
		return nil, fmt.Errorf("failed to list student records: %w", err)
	}
	return records, nil
}

// ImportUpload imports a multipart upload
func (s *recordServiceImpl) ImportUpload(ctx context.Context, file *multipart.FileHeader) (int, error) {
	if file == nil {
		return 0, apperrors.NewImportError(apperrors.ErrEmptyUpload, "upload failed")
	}
	if err := checkFilename(file.Filename); err != nil {
		return 0, err
	}
	if file.Size > s.config.MaxUploadSize {
		return 0, apperrors.NewImportError(apperrors.ErrUploadTooLarge, "upload failed")
	}

	f, err := file.Open()
	if err != nil {
		s.logger.Error().Err(err).Str("filename", file.Filename).Msg("Failed to open uploaded file")
		return 0, apperrors.NewImportError(fmt.Errorf("failed to open uploaded file: %w", err), "upload failed")
	}
	defer f.Close()

	return s.ImportCSV(ctx, file.Filename, f)
}

// ImportCSV parses a CSV roster and stores one record per data row. Either
// every row is stored or none is.
func (s *recordServiceImpl) ImportCSV(ctx context.Context, filename string, r io.Reader) (int, error) {
	if err := checkFilename(filename); err != nil {
		return 0, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.config.MaxUploadSize+1))
	if err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Msg("Failed to read upload")
		return 0, apperrors.NewImportError(fmt.Errorf("failed to read upload: %w", err), "upload failed")
	}
	if int64(len(data)) > s.config.MaxUploadSize {
		return 0, apperrors.NewImportError(apperrors.ErrUploadTooLarge, "upload failed")
	}

	storedPath, err := s.storage.Save(filename, bytes.NewReader(data), filestorage.ImportsDir)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Msg("Failed to keep a copy of the upload")
		return 0, apperrors.NewImportError(err, "upload failed")
	}

	rows, err := csvimport.ParseBytes(data)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("filename", filename).
			Str("stored_path", s.storage.GetFullPath(storedPath)).
			Msg("Rejected malformed CSV")
		return 0, apperrors.NewImportError(fmt.Errorf("%w: %w", apperrors.ErrMalformedFile, err), "upload failed")
	}

	records := make([]*models.StudentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, recordFromRow(row))
	}

	n, err := s.recordRepo.CreateBatch(ctx, records)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Int("rows", len(rows)).Msg("Failed to store imported records")
		return 0, apperrors.NewImportError(err, "upload failed")
	}

	s.logger.Info().
		Str("filename", filename).
		Str("stored_path", s.storage.GetFullPath(storedPath)).
		Int64("records", n).
		Msg("Student records imported")
	return int(n), nil
}

// DeleteByIDNo removes all records for idno. Zero matches is success.
func (s *recordServiceImpl) DeleteByIDNo(ctx context.Context, idno string) (int64, error) {
	if idno == "" {
		return 0, apperrors.ErrInvalidIDNo
	}

	deleted, err := s.recordRepo.DeleteByIDNo(ctx, idno)
	if err != nil {
		s.logger.Error().Err(err).Str("idno", idno).Msg("Failed to delete student records")
		return 0, fmt.Errorf("failed to delete student records: %w", err)
	}

	s.logger.Info().Str("idno", idno).Int64("deleted", deleted).Msg("Student records deleted")
	return deleted, nil
}

// DeleteAll empties the record store
func (s *recordServiceImpl) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.recordRepo.DeleteAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete all student records")
		return 0, fmt.Errorf("failed to delete all student records: %w", err)
	}

	s.logger.Info().Int64("deleted", deleted).Msg("All student records deleted")
	return deleted, nil
}

// LookupByIDNo returns the records for idno, or apperrors.ErrStudentNotFound
// when there are none. An empty idno matches nothing.
func (s *recordServiceImpl) LookupByIDNo(ctx context.Context, idno string) ([]*models.StudentRecord, error) {
	if idno == "" {
		return nil, apperrors.ErrStudentNotFound
	}

	records, err := s.recordRepo.FindByIDNo(ctx, idno)
	if err != nil {
		s.logger.Error().Err(err).Str("idno", idno).Msg("Failed to look up student records")
		return nil, fmt.Errorf("failed to look up student records: %w", err)
	}
	if len(records) == 0 {
		return nil, apperrors.ErrStudentNotFound
	}

	return records, nil
}

func checkFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.NewImportError(apperrors.ErrEmptyUpload, "upload failed")
	}
	if !csvimport.AllowedFile(filename) {
		return apperrors.NewImportError(apperrors.ErrUnsupportedFileType, "upload failed")
	}
	return nil
}

func recordFromRow(row csvimport.Row) *models.StudentRecord {
	return &models.StudentRecord{
		IDNo:        row.IDNo,
		Branch:      row.Branch,
		Year:        row.Year,
		Semester:    row.Semester,
		Subject:     row.Subject,
		SubjectCode: row.SubjectCode,
		Type:        row.Type,
		OClass:      row.OClass,
	}
}
