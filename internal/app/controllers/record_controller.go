package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/allotment/internal/app/models/dto"
	"github.com/yigit/allotment/internal/app/services"
	"github.com/yigit/allotment/internal/middleware"
	"github.com/yigit/allotment/internal/pkg/apperrors"
)

// multipartOverhead is allowed on top of the file size limit for boundaries
// and part headers
const multipartOverhead = 1 << 20

// RecordController handles student record endpoints
type RecordController struct {
	recordService services.RecordService
	maxUploadSize int64
	logger        zerolog.Logger
}

// NewRecordController creates a new RecordController
func NewRecordController(recordService services.RecordService, maxUploadSize int64, logger zerolog.Logger) *RecordController {
	if maxUploadSize <= 0 {
		maxUploadSize = services.DefaultMaxUploadSize
	}
	return &RecordController{
		recordService: recordService,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// ListRecords godoc
// @Summary List all student records
// @Description Returns every stored allotment record in storage order
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.RecordListResponse} "Records retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/records [get]
func (c *RecordController) ListRecords(ctx *gin.Context) {
	records, err := c.recordService.ListRecords(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.RecordListResponse{
		Total:   len(records),
		Records: records,
	}, "Records retrieved successfully"))
}

// ImportRecords godoc
// @Summary Upload a student allotment CSV
// @Description Imports every data row of a .csv file with header id,branch,year,sem,sub,subjectcode,type,oclass. Either all rows are stored or none.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResponse} "Students uploaded successfully"
// @Failure 400 {object} dto.ErrorResponse "Upload failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Upload failed"
// @Router /admin/records/import [post]
func (c *RecordController) ImportRecords(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadSize+multipartOverhead)

	file, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		cause := apperrors.ErrEmptyUpload
		if errors.As(err, &tooLarge) {
			cause = apperrors.ErrUploadTooLarge
		}
		c.logger.Warn().Err(err).Msg("Upload without a usable file part")
		middleware.HandleAPIError(ctx, apperrors.NewImportError(cause, "upload failed"))
		return
	}

	imported, err := c.recordService.ImportUpload(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
		dto.ImportResponse{Imported: imported},
		fmt.Sprintf("Students uploaded successfully! Total records: %d", imported),
	))
}

// DeleteStudent godoc
// @Summary Delete a student's records
// @Description Removes every record whose ID number matches exactly. Succeeds when nothing matches.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param idno path string true "Student ID number"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteResponse} "Student deleted successfully"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/records/{idno} [delete]
func (c *RecordController) DeleteStudent(ctx *gin.Context) {
	deleted, err := c.recordService.DeleteByIDNo(ctx.Request.Context(), ctx.Param("idno"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DeleteResponse{Deleted: deleted}, "Student deleted successfully"))
}

// DeleteAllRecords godoc
// @Summary Delete all student records
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DeleteResponse} "All student data deleted successfully!"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/records [delete]
func (c *RecordController) DeleteAllRecords(ctx *gin.Context) {
	deleted, err := c.recordService.DeleteAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DeleteResponse{Deleted: deleted}, "All student data deleted successfully!"))
}

// LookupStudent godoc
// @Summary Look up a student's allotment
// @Description Public lookup by ID number, sent as JSON or form field idno
// @Tags students
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.LookupRequest true "Student ID number"
// @Success 200 {object} dto.APIResponse{data=dto.StudentRecordsResponse} "Records found"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "No data found for given ID Number"
// @Router /students/lookup [post]
func (c *RecordController) LookupStudent(ctx *gin.Context) {
	var req dto.LookupRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	c.respondWithStudent(ctx, req.IDNo)
}

// GetStudentRecords godoc
// @Summary Get a student's allotment
// @Tags students
// @Produce json
// @Param idno path string true "Student ID number"
// @Success 200 {object} dto.APIResponse{data=dto.StudentRecordsResponse} "Records found"
// @Failure 404 {object} dto.ErrorResponse "No data found for given ID Number"
// @Router /students/{idno}/records [get]
func (c *RecordController) GetStudentRecords(ctx *gin.Context) {
	c.respondWithStudent(ctx, ctx.Param("idno"))
}

func (c *RecordController) respondWithStudent(ctx *gin.Context, idno string) {
	records, err := c.recordService.LookupByIDNo(ctx.Request.Context(), idno)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.StudentRecordsResponse{
		IDNo:    idno,
		Records: records,
	}, "Records found"))
}
