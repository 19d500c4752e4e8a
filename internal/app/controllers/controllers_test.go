package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/allotment/internal/app/models"
	"github.com/yigit/allotment/internal/app/models/dto"
	"github.com/yigit/allotment/internal/pkg/apperrors"
	"github.com/yigit/allotment/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockRecordService struct {
	mock.Mock
}

func (m *mockRecordService) ListRecords(ctx context.Context) ([]*models.StudentRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*models.StudentRecord)
	return records, args.Error(1)
}

func (m *mockRecordService) ImportCSV(ctx context.Context, filename string, r io.Reader) (int, error) {
	args := m.Called(ctx, filename, r)
	return args.Int(0), args.Error(1)
}

func (m *mockRecordService) ImportUpload(ctx context.Context, file *multipart.FileHeader) (int, error) {
	args := m.Called(ctx, file)
	return args.Int(0), args.Error(1)
}

func (m *mockRecordService) DeleteByIDNo(ctx context.Context, idno string) (int64, error) {
	args := m.Called(ctx, idno)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecordService) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecordService) LookupByIDNo(ctx context.Context, idno string) ([]*models.StudentRecord, error) {
	args := m.Called(ctx, idno)
	records, _ := args.Get(0).([]*models.StudentRecord)
	return records, args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	args := m.Called(ctx, username, password)
	resp, _ := args.Get(0).(*dto.TokenResponse)
	return resp, args.Error(1)
}

type apiResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func newRecordRouter(svc *mockRecordService, maxUploadSize int64) *gin.Engine {
	c := NewRecordController(svc, maxUploadSize, zerolog.Nop())
	r := gin.New()
	r.GET("/admin/records", c.ListRecords)
	r.POST("/admin/records/import", c.ImportRecords)
	r.DELETE("/admin/records/:idno", c.DeleteStudent)
	r.DELETE("/admin/records", c.DeleteAllRecords)
	r.POST("/students/lookup", c.LookupStudent)
	r.GET("/students/:idno/records", c.GetStudentRecords)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestAuthController_Login(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, "registrar", "hunter22").
		Return(&dto.TokenResponse{AccessToken: "signed.jwt", TokenType: "Bearer", ExpiresIn: 3600}, nil)
	svc.On("Login", mock.Anything, "registrar", "wrong").Return(nil, apperrors.ErrInvalidCredentials)

	c := NewAuthController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/auth/login", c.Login)

	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"registrar","password":"hunter22"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var token dto.TokenResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &token))
		assert.Equal(t, "signed.jwt", token.AccessToken)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.SessionCookie, cookies[0].Name)
		assert.Equal(t, "signed.jwt", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 3600, cookies[0].MaxAge)
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{"username": {"registrar"}, "password": {"hunter22"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"registrar","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", decode(t, w).Error.Message)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("missing password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"registrar"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
		assert.Equal(t, "Password", resp.Error.Field)
	})
}

func TestAuthController_Logout(t *testing.T) {
	c := NewAuthController(&mockAuthService{}, zerolog.Nop())
	r := gin.New()
	r.POST("/auth/logout", c.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRecordController_ListRecords(t *testing.T) {
	svc := &mockRecordService{}
	svc.On("ListRecords", mock.Anything).Return([]*models.StudentRecord{{ID: 1, IDNo: "S1"}, {ID: 2, IDNo: "S2"}}, nil)

	w := httptest.NewRecorder()
	newRecordRouter(svc, 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/records", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var list dto.RecordListResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "S2", list.Records[1].IDNo)
}

func TestRecordController_ImportRecords(t *testing.T) {
	csv := []byte("id,branch,year,sem,sub,subjectcode,type,oclass\nS1,CSE,2,1,Maths,M101,theory,A\n")

	t.Run("success", func(t *testing.T) {
		svc := &mockRecordService{}
		svc.On("ImportUpload", mock.Anything, mock.MatchedBy(func(fh *multipart.FileHeader) bool {
			return fh.Filename == "roster.csv"
		})).Return(1, nil)

		body, contentType := multipartBody(t, "file", "roster.csv", csv)
		req := httptest.NewRequest(http.MethodPost, "/admin/records/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		newRecordRouter(svc, 0).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "Students uploaded successfully! Total records: 1", resp.Message)
		assert.JSONEq(t, `{"imported":1}`, string(resp.Data))
		svc.AssertExpectations(t)
	})

	t.Run("missing file part", func(t *testing.T) {
		svc := &mockRecordService{}
		body, contentType := multipartBody(t, "upload", "roster.csv", csv)
		req := httptest.NewRequest(http.MethodPost, "/admin/records/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		newRecordRouter(svc, 0).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Upload failed", decode(t, w).Error.Message)
		svc.AssertNotCalled(t, "ImportUpload", mock.Anything, mock.Anything)
	})

	t.Run("body over limit", func(t *testing.T) {
		svc := &mockRecordService{}
		big := bytes.Repeat([]byte("S1,CSE\n"), (2<<20)/7)
		body, contentType := multipartBody(t, "file", "roster.csv", big)
		req := httptest.NewRequest(http.MethodPost, "/admin/records/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		newRecordRouter(svc, 16).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Upload failed", decode(t, w).Error.Message)
		svc.AssertNotCalled(t, "ImportUpload", mock.Anything, mock.Anything)
	})

	t.Run("rejected file", func(t *testing.T) {
		svc := &mockRecordService{}
		svc.On("ImportUpload", mock.Anything, mock.Anything).
			Return(0, apperrors.NewImportError(apperrors.ErrUnsupportedFileType, "upload failed"))

		body, contentType := multipartBody(t, "file", "roster.xlsx", csv)
		req := httptest.NewRequest(http.MethodPost, "/admin/records/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		newRecordRouter(svc, 0).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrorCodeImportRejected, resp.Error.Code)
		assert.Equal(t, "Upload failed", resp.Error.Message)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := &mockRecordService{}
		svc.On("ImportUpload", mock.Anything, mock.Anything).
			Return(0, apperrors.NewImportError(errors.New("deadlock detected"), "upload failed"))

		body, contentType := multipartBody(t, "file", "roster.csv", csv)
		req := httptest.NewRequest(http.MethodPost, "/admin/records/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		newRecordRouter(svc, 0).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Upload failed", decode(t, w).Error.Message)
		assert.NotContains(t, w.Body.String(), "deadlock")
	})
}

func TestRecordController_Deletes(t *testing.T) {
	svc := &mockRecordService{}
	svc.On("DeleteByIDNo", mock.Anything, "S404").Return(int64(0), nil)
	svc.On("DeleteAll", mock.Anything).Return(int64(7), nil)
	router := newRecordRouter(svc, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/records/S404", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Student deleted successfully", resp.Message)
	assert.JSONEq(t, `{"deleted":0}`, string(resp.Data))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/records", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, "All student data deleted successfully!", resp.Message)
	assert.JSONEq(t, `{"deleted":7}`, string(resp.Data))
}

func TestRecordController_Lookup(t *testing.T) {
	svc := &mockRecordService{}
	hit := []*models.StudentRecord{{ID: 1, IDNo: "S1", Branch: "CSE", Subject: "Maths", SubjectCode: "M101"}}
	svc.On("LookupByIDNo", mock.Anything, "S1").Return(hit, nil)
	svc.On("LookupByIDNo", mock.Anything, "S404").Return(nil, apperrors.ErrStudentNotFound)
	router := newRecordRouter(svc, 0)

	t.Run("json hit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/students/lookup", strings.NewReader(`{"idno":"S1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body dto.StudentRecordsResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
		assert.Equal(t, "S1", body.IDNo)
		require.Len(t, body.Records, 1)
		assert.Equal(t, "M101", body.Records[0].SubjectCode)
	})

	t.Run("form miss", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/students/lookup", strings.NewReader("idno=S404"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No data found for given ID Number", decode(t, w).Error.Message)
	})

	t.Run("missing idno is not found", func(t *testing.T) {
		svc.On("LookupByIDNo", mock.Anything, "").Return(nil, apperrors.ErrStudentNotFound)

		req := httptest.NewRequest(http.MethodPost, "/students/lookup", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No data found for given ID Number", decode(t, w).Error.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/students/lookup", strings.NewReader(`{"idno":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("path", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/S1/records", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/S404/records", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthController(t *testing.T) {
	up := NewHealthController(fakePinger{})
	down := NewHealthController(fakePinger{err: errors.New("no route to host")})

	r := gin.New()
	r.GET("/ping", up.Ping)
	r.GET("/health", up.Health)
	r.GET("/health-down", down.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health-down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "no route to host")
}
