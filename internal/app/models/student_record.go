package models

// StudentRecord is one subject-allotment row of the 'students' table.
// Every text field is stored as an empty string when absent.
type StudentRecord struct {
	ID          int64  `json:"id" db:"id" example:"1"`
	IDNo        string `json:"idno" db:"idno" example:"S1"`
	Name        string `json:"name" db:"name" example:""`
	Branch      string `json:"branch" db:"branch" example:"CSE"`
	Year        string `json:"year" db:"year" example:"2"`
	Semester    string `json:"semester" db:"semester" example:"1"`
	Subject     string `json:"subject" db:"subject" example:"Maths"`
	SubjectCode string `json:"subjectCode" db:"subject_code" example:"M101"`
	Type        string `json:"type" db:"type" example:"theory"`
	OClass      string `json:"oclass" db:"oclass" example:"A"`
}
