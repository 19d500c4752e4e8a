package dto

import "github.com/yigit/allotment/internal/app/models"

// LookupRequest carries the student ID number for a public lookup. A missing
// or unknown idno is answered as not found.
type LookupRequest struct {
	IDNo string `json:"idno" form:"idno" example:"S1"`
}

// StudentRecordsResponse lists the records of one student
type StudentRecordsResponse struct {
	IDNo    string                  `json:"idno" example:"S1"`
	Records []*models.StudentRecord `json:"records"`
}

// RecordListResponse lists every stored record
type RecordListResponse struct {
	Total   int                     `json:"total" example:"1"`
	Records []*models.StudentRecord `json:"records"`
}

// ImportResponse reports a completed CSV import
type ImportResponse struct {
	Imported int `json:"imported" example:"42"`
}

// DeleteResponse reports how many rows a delete removed. Zero is still a success.
type DeleteResponse struct {
	Deleted int64 `json:"deleted" example:"3"`
}
