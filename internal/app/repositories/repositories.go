package repositories

// Repositories holds all the repository instances
type Repositories struct {
	StudentRecordRepository *StudentRecordRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		StudentRecordRepository: NewStudentRecordRepository(db),
	}
}
