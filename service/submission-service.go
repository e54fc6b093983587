package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fedman/app_error"
	"fedman/metrics"
	"fedman/repository"
	"fedman/utils"

	"gorm.io/gorm"
)

type ReviewAction = string

const (
	ActionApprove         ReviewAction = "approve"
	ActionReject          ReviewAction = "reject"
	ActionRequestRevision ReviewAction = "request_revision"
)

type SubmissionService struct {
	submissionRepository  *repository.SubmissionRepository
	competitionRepository *repository.CompetitionRepository
	notifier              Notifier
}

func NewSubmissionService(db *gorm.DB, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		submissionRepository:  repository.NewSubmissionRepository(db),
		competitionRepository: repository.NewCompetitionRepository(db),
		notifier:              notifier,
	}
}

func (s *SubmissionService) Submit(submission *repository.Submission) (*repository.Submission, error) {
	if err := validateSubmission(submission); err != nil {
		return nil, err
	}
	if err := s.checkTarget(submission); err != nil {
		return nil, err
	}
	submission.Status = repository.StatusPending
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}
	created, err := s.submissionRepository.CreateSubmission(submission)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, app_error.DuplicatePending(submission.AthleteId, fmt.Sprintf("%s/%d", submission.Kind, submission.TargetId))
		}
		return nil, app_error.Internal(err)
	}
	submission = created
	metrics.SubmissionsCreatedCounter.WithLabelValues(submission.Kind).Inc()
	s.notify(&SubmissionEvent{
		SubmissionId: submission.Id,
		AthleteId:    submission.AthleteId,
		NewStatus:    submission.Status,
		Notes:        submission.Notes,
	})
	return submission, nil
}

// Review performs the single-shot status transition. Two concurrent calls on
// the same pending submission yield one success and one NotPending.
func (s *SubmissionService) Review(submissionId int, action ReviewAction, notes string, reviewer *repository.User) (*repository.Submission, error) {
	status, err := statusForAction(action)
	if err != nil {
		return nil, err
	}
	if notes == "" && action != ActionApprove {
		return nil, app_error.ValidationFailed("notes", "are required when rejecting or requesting revision")
	}
	var adminNotes *string
	if notes != "" {
		adminNotes = &notes
	}
	var reviewerId *int
	if reviewer != nil {
		reviewerId = &reviewer.Id
	}

	transitioned, err := s.submissionRepository.TransitionFromPending(submissionId, status, adminNotes, reviewerId, time.Now())
	if err != nil {
		return nil, app_error.Internal(err)
	}
	if !transitioned {
		metrics.ReviewConflictCounter.Inc()
		if _, err := s.submissionRepository.GetSubmissionById(submissionId); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, app_error.NotFound("submission", submissionId)
			}
			return nil, app_error.Internal(err)
		}
		return nil, app_error.NotPending(submissionId)
	}

	submission, err := s.submissionRepository.GetSubmissionById(submissionId)
	if err != nil {
		return nil, app_error.Internal(err)
	}
	metrics.SubmissionReviewCounter.WithLabelValues(status).Inc()
	s.notify(&SubmissionEvent{
		SubmissionId: submission.Id,
		AthleteId:    submission.AthleteId,
		NewStatus:    submission.Status,
		Notes:        notes,
	})
	return submission, nil
}

func (s *SubmissionService) GetSubmissionById(submissionId int) (*repository.Submission, error) {
	submission, err := s.submissionRepository.GetSubmissionById(submissionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NotFound("submission", submissionId)
		}
		return nil, app_error.Internal(err)
	}
	return submission, nil
}

func (s *SubmissionService) GetSubmissions(filter repository.SubmissionFilter) ([]*repository.Submission, error) {
	submissions, err := s.submissionRepository.GetSubmissions(filter)
	if err != nil {
		return nil, app_error.Internal(err)
	}
	return submissions, nil
}

// DeleteSubmission is an administrative override, not a review outcome.
func (s *SubmissionService) DeleteSubmission(submissionId int) error {
	if _, err := s.GetSubmissionById(submissionId); err != nil {
		return err
	}
	return s.submissionRepository.DeleteSubmission(submissionId)
}

// notify is best-effort. A failed emission never rolls back a transition.
func (s *SubmissionService) notify(event *SubmissionEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifySubmission(event); err != nil {
		metrics.NotificationErrorCounter.Inc()
		log.Printf("failed to emit notification for submission %d: %v", event.SubmissionId, err)
	}
}

// checkTarget verifies the claimed category, grade or seminar exists. Reads
// are lenient about dangling references, submission time is not.
func (s *SubmissionService) checkTarget(submission *repository.Submission) error {
	var err error
	var field string
	switch submission.Kind {
	case repository.KindCompetitionResult:
		field = "category_id"
		_, err = s.competitionRepository.GetCategoryById(submission.TargetId)
	case repository.KindGradeExam:
		field = "grade_id"
		_, err = s.competitionRepository.GetGradeById(submission.TargetId)
	case repository.KindSeminarParticipation:
		field = "seminar_id"
		_, err = s.competitionRepository.GetSeminarById(submission.TargetId)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return app_error.ValidationFailed(field, fmt.Sprintf("%d is not a known target", submission.TargetId))
		}
		return app_error.Internal(err)
	}
	return nil
}

func statusForAction(action ReviewAction) (repository.SubmissionStatus, error) {
	switch action {
	case ActionApprove:
		return repository.StatusApproved, nil
	case ActionReject:
		return repository.StatusRejected, nil
	case ActionRequestRevision:
		return repository.StatusRevisionRequested, nil
	default:
		return "", app_error.ValidationFailed("action", fmt.Sprintf("%q is not a review action", action))
	}
}

func validateSubmission(submission *repository.Submission) error {
	if submission.AthleteId == 0 {
		return app_error.ValidationFailed("athlete_id", "is required")
	}
	switch submission.Kind {
	case repository.KindCompetitionResult:
		return validateCompetitionResult(submission)
	case repository.KindGradeExam:
		return validateGradeExam(submission)
	case repository.KindSeminarParticipation:
		return validateSeminarParticipation(submission)
	default:
		return app_error.ValidationFailed("kind", fmt.Sprintf("%q is not a submission kind", submission.Kind))
	}
}

func validateCompetitionResult(submission *repository.Submission) error {
	if submission.CategoryId == nil {
		return app_error.ValidationFailed("category_id", "is required for competition results")
	}
	if submission.PlacementClaimed == nil {
		return app_error.ValidationFailed("placement_claimed", "is required for competition results")
	}
	if *submission.PlacementClaimed < 1 || *submission.PlacementClaimed > 3 {
		return app_error.ValidationFailed("placement_claimed", "must be between 1 and 3")
	}
	if submission.IsTeamResult() {
		hasCoMember := false
		for _, memberId := range submission.TeamMemberIds {
			if int(memberId) != submission.AthleteId {
				hasCoMember = true
				break
			}
		}
		if !hasCoMember {
			return app_error.ValidationFailed("team_member_ids", "must name at least one co-member for team results")
		}
		if len(utils.Uniques(submission.TeamMemberIds)) != len(submission.TeamMemberIds) {
			return app_error.ValidationFailed("team_member_ids", "must not contain duplicates")
		}
	} else if len(submission.TeamMemberIds) > 0 {
		return app_error.ValidationFailed("team_member_ids", "are only allowed on team results")
	}
	submission.TargetId = *submission.CategoryId
	return nil
}

func validateGradeExam(submission *repository.Submission) error {
	if submission.GradeId == nil {
		return app_error.ValidationFailed("grade_id", "is required for grade exams")
	}
	if len(submission.ExaminerIds) < 1 || len(submission.ExaminerIds) > 2 {
		return app_error.ValidationFailed("examiner_ids", "must name one or two examiners")
	}
	if submission.Level == nil {
		return app_error.ValidationFailed("level", "is required for grade exams")
	}
	submission.TargetId = *submission.GradeId
	return nil
}

func validateSeminarParticipation(submission *repository.Submission) error {
	if submission.SeminarId == nil {
		return app_error.ValidationFailed("seminar_id", "is required for seminar participations")
	}
	submission.TargetId = *submission.SeminarId
	return nil
}
