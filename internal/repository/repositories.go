package repository

// Repositories bundles every typed repository over one blob store.
type Repositories struct {
	Classes        *ClassRepository
	Students       *StudentRepository
	Sessions       *SessionRepository
	Attendances    *AttendanceRepository
	PreRoutines    *PreRoutineRepository
	Warnings       *WarningRepository
	Points         *PointRepository
	Questions      *QuestionRepository
	Answers        *AnswerRepository
	QuizResponses  *QuizResponseRepository
	MissionResults *MissionRepository
	Claims         *ClaimRepository
}

// NewRepositories wires all repositories to store.
func NewRepositories(store BlobStore, opts CollectionOptions) *Repositories {
	return &Repositories{
		Classes:        NewClassRepository(store, opts),
		Students:       NewStudentRepository(store, opts),
		Sessions:       NewSessionRepository(store, opts),
		Attendances:    NewAttendanceRepository(store, opts),
		PreRoutines:    NewPreRoutineRepository(store, opts),
		Warnings:       NewWarningRepository(store, opts),
		Points:         NewPointRepository(store, opts),
		Questions:      NewQuestionRepository(store, opts),
		Answers:        NewAnswerRepository(store, opts),
		QuizResponses:  NewQuizResponseRepository(store, opts),
		MissionResults: NewMissionRepository(store, opts),
		Claims:         NewClaimRepository(store, opts),
	}
}
