package repository

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type SubmissionKind = string

const (
	KindGradeExam            SubmissionKind = "GRADE_EXAM"
	KindSeminarParticipation SubmissionKind = "SEMINAR_PARTICIPATION"
	KindCompetitionResult    SubmissionKind = "COMPETITION_RESULT"
)

type SubmissionStatus = string

const (
	StatusPending           SubmissionStatus = "PENDING"
	StatusApproved          SubmissionStatus = "APPROVED"
	StatusRejected          SubmissionStatus = "REJECTED"
	StatusRevisionRequested SubmissionStatus = "REVISION_REQUESTED"
)

type ResultType = string

const (
	ResultIndividual ResultType = "INDIVIDUAL"
	ResultTeam       ResultType = "TEAM"
)

// ErrDuplicatePending is returned when the one-pending-per-target index
// rejects an insert.
var ErrDuplicatePending = errors.New("duplicate pending submission")

type Submission struct {
	Id        int              `gorm:"primaryKey"`
	Kind      SubmissionKind   `gorm:"not null;type:fed.submission_kind"`
	AthleteId int              `gorm:"not null;references:athletes(id)"`
	Status    SubmissionStatus `gorm:"not null;type:fed.submission_status"`
	// TargetId is the category, grade or seminar being claimed, depending
	// on Kind. It backs the partial unique index on pending submissions.
	TargetId int `gorm:"not null"`

	// competition result payload
	CategoryId       *int          `gorm:"null"`
	GroupId          *int          `gorm:"null"`
	PlacementClaimed *int          `gorm:"null"`
	ResultType       *ResultType   `gorm:"null;type:fed.result_type"`
	TeamName         *string       `gorm:"null"`
	TeamMemberIds    pq.Int64Array `gorm:"type:integer[]"`

	// grade exam payload
	GradeId     *int          `gorm:"null"`
	ExaminerIds pq.Int64Array `gorm:"type:integer[]"`
	ExamEventId *int          `gorm:"null"`
	Level       *int          `gorm:"null"`

	// seminar payload
	SeminarId *int `gorm:"null"`

	Attachments pq.StringArray `gorm:"type:text[]"`
	Notes       string         `gorm:"not null"`
	AdminNotes  *string        `gorm:"null"`
	ReviewerId  *int           `gorm:"null;references:users(id)"`
	SubmittedAt time.Time      `gorm:"not null"`
	ReviewedAt  *time.Time     `gorm:"null"`

	Athlete  *Athlete  `gorm:"foreignKey:AthleteId;constraint:OnDelete:CASCADE"`
	Category *Category `gorm:"foreignKey:CategoryId"`
	Reviewer *User     `gorm:"foreignKey:ReviewerId"`
}

// IsTeamResult reports whether the submission claims a team placement.
func (s *Submission) IsTeamResult() bool {
	return s.ResultType != nil && *s.ResultType == ResultTeam
}

type SubmissionFilter struct {
	AthleteId *int
	Status    *SubmissionStatus
	Kind      *SubmissionKind
}

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) CreateSubmission(submission *Submission) (*Submission, error) {
	result := r.DB.Create(submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePending
		}
		return nil, result.Error
	}
	return submission, nil
}

func (r *SubmissionRepository) GetSubmissionById(id int) (*Submission, error) {
	var submission Submission
	result := r.DB.Preload("Athlete").Preload("Category").Preload("Category.Competition").
		First(&submission, Submission{Id: id})
	if result.Error != nil {
		return nil, result.Error
	}
	return &submission, nil
}

func (r *SubmissionRepository) GetSubmissions(filter SubmissionFilter) ([]*Submission, error) {
	query := r.DB.Preload("Athlete").Preload("Category")
	if filter.AthleteId != nil {
		query = query.Where("athlete_id = ?", *filter.AthleteId)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	var submissions []*Submission
	result := query.Order("submitted_at DESC, id DESC").Find(&submissions)
	if result.Error != nil {
		return nil, result.Error
	}
	return submissions, nil
}

// GetCompetitionResultsForAthlete returns competition result submissions the
// athlete either filed or appears in as a team member.
func (r *SubmissionRepository) GetCompetitionResultsForAthlete(athleteId int) ([]*Submission, error) {
	var submissions []*Submission
	result := r.DB.Preload("Category").Preload("Category.Competition").
		Where("kind = ?", KindCompetitionResult).
		Where("athlete_id = ? OR ? = ANY(team_member_ids)", athleteId, athleteId).
		Order("submitted_at DESC, id DESC").
		Find(&submissions)
	if result.Error != nil {
		return nil, result.Error
	}
	return submissions, nil
}

// TransitionFromPending performs the conditional status update. At most one
// concurrent caller sees reviewed = true; the rest see zero rows affected.
func (r *SubmissionRepository) TransitionFromPending(id int, status SubmissionStatus, adminNotes *string, reviewerId *int, reviewedAt time.Time) (bool, error) {
	result := r.DB.Model(&Submission{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":      status,
			"admin_notes": adminNotes,
			"reviewer_id": reviewerId,
			"reviewed_at": reviewedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *SubmissionRepository) DeleteSubmission(submissionId int) error {
	result := r.DB.Delete(&Submission{Id: submissionId})
	return result.Error
}
