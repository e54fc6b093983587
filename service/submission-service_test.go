package service

import (
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"fedman/app_error"
	"fedman/config"
	"fedman/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run("postgres", "17.2-alpine", []string{"POSTGRES_USER=postgres", "POSTGRES_PASSWORD=postgres", "DATABASE_NAME=postgres"})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}
	resource.Expire(600)
	sqlInfo := fmt.Sprintf(
		"host=localhost port=%s user=postgres password=postgres dbname=postgres sslmode=disable search_path=fed",
		resource.GetPort("5432/tcp"))

	if err := pool.Retry(func() error {
		var err error
		db, err = gorm.Open(postgres.Open(sqlInfo), &gorm.Config{
			NamingStrategy: schema.NamingStrategy{
				TablePrefix:   "fed.",
				SingularTable: false,
			},
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		if err != nil {
			return err
		}
		return config.Migrate(db,
			&repository.Club{},
			&repository.Athlete{},
			&repository.User{},
			&repository.Competition{},
			&repository.Category{},
			&repository.CategoryPlacement{},
			&repository.TeamPlacement{},
			&repository.Grade{},
			&repository.Seminar{},
			&repository.Submission{},
		)
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("Could not purge resource: %s", err)
		}
	}()
	m.Run()
}

type captureNotifier struct {
	mu     sync.Mutex
	events []*SubmissionEvent
}

func (n *captureNotifier) NotifySubmission(event *SubmissionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *captureNotifier) eventsWithStatus(status repository.SubmissionStatus) []*SubmissionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	matching := make([]*SubmissionEvent, 0)
	for _, event := range n.events {
		if event.NewStatus == status {
			matching = append(matching, event)
		}
	}
	return matching
}

type failingNotifier struct {
	mu       sync.Mutex
	attempts int
}

func (n *failingNotifier) NotifySubmission(event *SubmissionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attempts++
	return fmt.Errorf("broker unreachable")
}

func intPtr(i int) *int {
	return &i
}

func seedAthlete(t *testing.T, name string) *repository.Athlete {
	t.Helper()
	athlete := &repository.Athlete{FirstName: name, LastName: "Tester"}
	require.NoError(t, db.Create(athlete).Error)
	return athlete
}

func seedReviewer(t *testing.T) *repository.User {
	t.Helper()
	user := &repository.User{DisplayName: "Reviewer", Permissions: pq.StringArray{repository.PermissionAdmin}}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCategory(t *testing.T, competitionName string, categoryName string) *repository.Category {
	t.Helper()
	competition := &repository.Competition{Name: competitionName, StartDate: time.Now()}
	require.NoError(t, db.Create(competition).Error)
	category := &repository.Category{CompetitionId: competition.Id, Name: categoryName}
	require.NoError(t, db.Create(category).Error)
	return category
}

func resultSubmission(athleteId int, categoryId int, placement int) *repository.Submission {
	return &repository.Submission{
		Kind:             repository.KindCompetitionResult,
		AthleteId:        athleteId,
		CategoryId:       &categoryId,
		PlacementClaimed: intPtr(placement),
		Notes:            "self reported",
	}
}

func seedGrade(t *testing.T, name string, level int) *repository.Grade {
	t.Helper()
	grade := &repository.Grade{Name: name, Level: level}
	require.NoError(t, db.Create(grade).Error)
	return grade
}

func seedSeminar(t *testing.T, name string) *repository.Seminar {
	t.Helper()
	seminar := &repository.Seminar{Name: name, Date: time.Now()}
	require.NoError(t, db.Create(seminar).Error)
	return seminar
}

func TestSubmitGradeExamAndSeminarParticipation(t *testing.T) {
	service := NewSubmissionService(db, &captureNotifier{})
	athlete := seedAthlete(t, "Gustav")
	grade := seedGrade(t, "1st Dan", 1)
	seminar := seedSeminar(t, "Referee Clinic")

	exam, err := service.Submit(&repository.Submission{
		Kind:        repository.KindGradeExam,
		AthleteId:   athlete.Id,
		GradeId:     &grade.Id,
		ExaminerIds: []int64{1, 2},
		Level:       intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, repository.StatusPending, exam.Status)
	assert.Equal(t, grade.Id, exam.TargetId)

	participation, err := service.Submit(&repository.Submission{
		Kind:      repository.KindSeminarParticipation,
		AthleteId: athlete.Id,
		SeminarId: &seminar.Id,
	})
	require.NoError(t, err)
	assert.Equal(t, seminar.Id, participation.TargetId)

	// pending uniqueness is scoped per kind and target
	_, err = service.Submit(&repository.Submission{
		Kind:      repository.KindSeminarParticipation,
		AthleteId: athlete.Id,
		SeminarId: &seminar.Id,
	})
	require.Error(t, err)
	assert.Equal(t, 409, app_error.HTTPStatus(err))
}

func TestSubmitRejectsUnknownTarget(t *testing.T) {
	service := NewSubmissionService(db, &captureNotifier{})
	athlete := seedAthlete(t, "Hana")

	_, err := service.Submit(resultSubmission(athlete.Id, 999999, 1))
	require.Error(t, err)
	assert.Equal(t, 400, app_error.HTTPStatus(err))
	assert.Contains(t, err.Error(), "category_id")
}

func TestSubmitValidationNamesMissingField(t *testing.T) {
	service := NewSubmissionService(db, &captureNotifier{})
	athlete := seedAthlete(t, "Vera")

	submission := &repository.Submission{
		Kind:      repository.KindCompetitionResult,
		AthleteId: athlete.Id,
	}
	_, err := service.Submit(submission)
	require.Error(t, err)
	assert.Equal(t, 400, app_error.HTTPStatus(err))
	assert.Contains(t, err.Error(), "category_id")

	exam := &repository.Submission{
		Kind:      repository.KindGradeExam,
		AthleteId: athlete.Id,
		GradeId:   intPtr(1),
		Level:     intPtr(2),
	}
	_, err = service.Submit(exam)
	require.Error(t, err)
	assert.Equal(t, 400, app_error.HTTPStatus(err))
	assert.Contains(t, err.Error(), "examiner_ids")
}

func TestDuplicatePendingIsRejectedUntilReviewed(t *testing.T) {
	notifier := &captureNotifier{}
	service := NewSubmissionService(db, notifier)
	athlete := seedAthlete(t, "Anna")
	reviewer := seedReviewer(t)
	category := seedCategory(t, "Regional Championship", "Kata U18")

	first, err := service.Submit(resultSubmission(athlete.Id, category.Id, 2))
	require.NoError(t, err)
	assert.Equal(t, repository.StatusPending, first.Status)

	_, err = service.Submit(resultSubmission(athlete.Id, category.Id, 2))
	require.Error(t, err)
	assert.Equal(t, 409, app_error.HTTPStatus(err))

	// a pending submission for a different target is fine
	otherCategory := seedCategory(t, "Regional Championship", "Kumite U18")
	_, err = service.Submit(resultSubmission(athlete.Id, otherCategory.Id, 1))
	require.NoError(t, err)

	_, err = service.Review(first.Id, ActionReject, "insufficient evidence", reviewer)
	require.NoError(t, err)

	// rejection frees the target for a new attempt
	_, err = service.Submit(resultSubmission(athlete.Id, category.Id, 2))
	require.NoError(t, err)
}

func TestReviewIsSingleShot(t *testing.T) {
	notifier := &captureNotifier{}
	service := NewSubmissionService(db, notifier)
	athlete := seedAthlete(t, "Boris")
	reviewer := seedReviewer(t)
	category := seedCategory(t, "Nationals", "Kumite Senior")

	submission, err := service.Submit(resultSubmission(athlete.Id, category.Id, 1))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = service.Review(submission.Id, ActionApprove, "", reviewer)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = service.Review(submission.Id, ActionReject, "duplicate claim", reviewer)
	}()
	wg.Wait()

	successes := 0
	conflicts := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, 409, app_error.HTTPStatus(err))
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	final, err := service.GetSubmissionById(submission.Id)
	require.NoError(t, err)
	if errs[0] == nil {
		assert.Equal(t, repository.StatusApproved, final.Status)
	} else {
		assert.Equal(t, repository.StatusRejected, final.Status)
	}

	// one event for the creation, one for the single completed transition
	assert.Len(t, notifier.eventsWithStatus(repository.StatusPending), 1)
	reviewEvents := append(
		notifier.eventsWithStatus(repository.StatusApproved),
		notifier.eventsWithStatus(repository.StatusRejected)...)
	assert.Len(t, reviewEvents, 1)
}

func TestReviewOfUnknownSubmissionIsNotFound(t *testing.T) {
	service := NewSubmissionService(db, &captureNotifier{})
	reviewer := seedReviewer(t)

	_, err := service.Review(999999, ActionApprove, "", reviewer)
	require.Error(t, err)
	assert.Equal(t, 404, app_error.HTTPStatus(err))
}

func TestRejectRequiresNotes(t *testing.T) {
	service := NewSubmissionService(db, &captureNotifier{})
	athlete := seedAthlete(t, "Clara")
	reviewer := seedReviewer(t)
	category := seedCategory(t, "City Trophy", "Kata Junior")

	submission, err := service.Submit(resultSubmission(athlete.Id, category.Id, 3))
	require.NoError(t, err)

	_, err = service.Review(submission.Id, ActionReject, "", reviewer)
	require.Error(t, err)
	assert.Equal(t, 400, app_error.HTTPStatus(err))

	_, err = service.Review(submission.Id, ActionRequestRevision, "", reviewer)
	require.Error(t, err)
	assert.Equal(t, 400, app_error.HTTPStatus(err))

	// the failed attempts must not have consumed the transition
	reviewed, err := service.Review(submission.Id, ActionRequestRevision, "certificate unreadable", reviewer)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusRevisionRequested, reviewed.Status)
}

func TestRejectScenario(t *testing.T) {
	notifier := &captureNotifier{}
	service := NewSubmissionService(db, notifier)
	athlete := seedAthlete(t, "Dana")
	reviewer := seedReviewer(t)
	category := seedCategory(t, "Winter Cup", "U18 Forms")

	submission, err := service.Submit(resultSubmission(athlete.Id, category.Id, 2))
	require.NoError(t, err)
	assert.Equal(t, repository.StatusPending, submission.Status)

	reviewed, err := service.Review(submission.Id, ActionReject, "insufficient evidence", reviewer)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusRejected, reviewed.Status)
	require.NotNil(t, reviewed.AdminNotes)
	assert.Equal(t, "insufficient evidence", *reviewed.AdminNotes)
	require.NotNil(t, reviewed.ReviewerId)
	assert.Equal(t, reviewer.Id, *reviewed.ReviewerId)
	assert.NotNil(t, reviewed.ReviewedAt)

	rejectedEvents := notifier.eventsWithStatus(repository.StatusRejected)
	require.Len(t, rejectedEvents, 1)
	assert.Equal(t, submission.Id, rejectedEvents[0].SubmissionId)
	assert.Equal(t, athlete.Id, rejectedEvents[0].AthleteId)
	assert.Equal(t, "insufficient evidence", rejectedEvents[0].Notes)

	// the same target can be claimed again after the rejection
	_, err = service.Submit(resultSubmission(athlete.Id, category.Id, 2))
	require.NoError(t, err)
}

func TestFailedNotificationDoesNotFailTheReview(t *testing.T) {
	notifier := &failingNotifier{}
	service := NewSubmissionService(db, notifier)
	athlete := seedAthlete(t, "Ines")
	reviewer := seedReviewer(t)
	category := seedCategory(t, "Coastal Cup", "Kata Veterans")

	submission, err := service.Submit(resultSubmission(athlete.Id, category.Id, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.attempts)

	reviewed, err := service.Review(submission.Id, ActionApprove, "", reviewer)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusApproved, reviewed.Status)
	assert.Equal(t, 2, notifier.attempts)

	// the transition persisted despite the emission failure
	final, err := service.GetSubmissionById(submission.Id)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusApproved, final.Status)

	// and it was consumed exactly once
	_, err = service.Review(submission.Id, ActionReject, "late objection", reviewer)
	require.Error(t, err)
	assert.Equal(t, 409, app_error.HTTPStatus(err))
}

func TestApprovalIsTerminal(t *testing.T) {
	service := NewSubmissionService(db, &captureNotifier{})
	athlete := seedAthlete(t, "Emil")
	reviewer := seedReviewer(t)
	category := seedCategory(t, "Summer Games", "Kumite Junior")

	submission, err := service.Submit(resultSubmission(athlete.Id, category.Id, 1))
	require.NoError(t, err)

	_, err = service.Review(submission.Id, ActionApprove, "", reviewer)
	require.NoError(t, err)

	_, err = service.Review(submission.Id, ActionReject, "changed my mind", reviewer)
	require.Error(t, err)
	assert.Equal(t, 409, app_error.HTTPStatus(err))
	assert.Contains(t, err.Error(), "not pending")
}
