package controller

import (
	"log"
	"strconv"
	"time"

	"fedman/app_error"
	"fedman/repository"
	"fedman/service"
	"fedman/utils"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type SubmissionController struct {
	submissionService *service.SubmissionService
	userService       *service.UserService
}

func NewSubmissionController(db *gorm.DB) *SubmissionController {
	// the workflow must keep working without a broker, notifications are
	// best-effort
	var notifier service.Notifier
	if kafkaNotifier, err := service.NewKafkaNotifier(); err != nil {
		log.Printf("notification emitter unavailable: %v", err)
	} else {
		notifier = kafkaNotifier
	}
	return &SubmissionController{
		submissionService: service.NewSubmissionService(db, notifier),
		userService:       service.NewUserService(db),
	}
}

func setupSubmissionController(db *gorm.DB) []RouteInfo {
	e := NewSubmissionController(db)
	baseUrl := "submissions"
	reviewRoles := []repository.Permission{repository.PermissionAdmin, repository.PermissionReviewer}
	routes := []RouteInfo{
		{Method: "POST", Path: "", HandlerFunc: e.createSubmissionHandler(), Authenticated: true},
		{Method: "GET", Path: "", HandlerFunc: e.getSubmissionsHandler()},
		{Method: "PUT", Path: "/:submission_id/approve", HandlerFunc: e.reviewSubmissionHandler(service.ActionApprove), Authenticated: true, RequiredRoles: reviewRoles},
		{Method: "PUT", Path: "/:submission_id/reject", HandlerFunc: e.reviewSubmissionHandler(service.ActionReject), Authenticated: true, RequiredRoles: reviewRoles},
		{Method: "PUT", Path: "/:submission_id/request-revision", HandlerFunc: e.reviewSubmissionHandler(service.ActionRequestRevision), Authenticated: true, RequiredRoles: reviewRoles},
		{Method: "DELETE", Path: "/:submission_id", HandlerFunc: e.deleteSubmissionHandler(), Authenticated: true, RequiredRoles: []repository.Permission{repository.PermissionAdmin}},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id CreateSubmission
// @Description Creates a submission for review
// @Tags submission
// @Accept json
// @Security BearerAuth
// @Produce json
// @Param body body SubmissionCreate true "Submission to create"
// @Success 201 {object} Submission
// @Router /submissions [post]
func (e *SubmissionController) createSubmissionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var submissionCreate SubmissionCreate
		if err := c.BindJSON(&submissionCreate); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		submission, err := e.submissionService.Submit(submissionCreate.toModel())
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toSubmissionResponse(submission))
	}
}

// @id GetSubmissions
// @Description Lists submissions, optionally filtered by athlete, status or kind
// @Tags submission
// @Produce json
// @Param athlete_id query int false "Athlete Id"
// @Param status query string false "Status"
// @Param kind query string false "Kind"
// @Success 200 {array} Submission
// @Router /submissions [get]
func (e *SubmissionController) getSubmissionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.SubmissionFilter{}
		if athleteIdParam := c.Query("athlete_id"); athleteIdParam != "" {
			athleteId, err := strconv.Atoi(athleteIdParam)
			if err != nil {
				c.JSON(400, gin.H{"error": "athlete_id must be an integer"})
				return
			}
			filter.AthleteId = &athleteId
		}
		if status := c.Query("status"); status != "" {
			filter.Status = &status
		}
		if kind := c.Query("kind"); kind != "" {
			filter.Kind = &kind
		}
		submissions, err := e.submissionService.GetSubmissions(filter)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(submissions, toSubmissionResponse))
	}
}

// @id ReviewSubmission
// @Description Applies a review action to a pending submission
// @Tags submission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param submission_id path int true "Submission Id"
// @Param body body SubmissionReview true "Review notes"
// @Success 200 {object} Submission
// @Router /submissions/{submission_id}/approve [put]
func (e *SubmissionController) reviewSubmissionHandler(action service.ReviewAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		submissionId, err := strconv.Atoi(c.Param("submission_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var review SubmissionReview
		if err := c.BindJSON(&review); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		reviewer, err := e.userService.GetUserFromAuthHeader(c)
		if err != nil {
			c.JSON(401, gin.H{"error": "Not authenticated"})
			return
		}
		submission, err := e.submissionService.Review(submissionId, action, review.Notes, reviewer)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toSubmissionResponse(submission))
	}
}

// @id DeleteSubmission
// @Description Removes a submission entirely, as an administrative override
// @Tags submission
// @Produce json
// @Security BearerAuth
// @Param submission_id path int true "Submission Id"
// @Success 204
// @Router /submissions/{submission_id} [delete]
func (e *SubmissionController) deleteSubmissionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		submissionId, err := strconv.Atoi(c.Param("submission_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.submissionService.DeleteSubmission(submissionId); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(204, nil)
	}
}

type SubmissionCreate struct {
	Kind      repository.SubmissionKind `json:"kind" binding:"required,oneof=GRADE_EXAM SEMINAR_PARTICIPATION COMPETITION_RESULT"`
	AthleteId int                       `json:"athlete_id" binding:"required"`

	CategoryId       *int                   `json:"category_id"`
	GroupId          *int                   `json:"group_id"`
	PlacementClaimed *int                   `json:"placement_claimed"`
	ResultType       *repository.ResultType `json:"result_type" binding:"omitempty,oneof=INDIVIDUAL TEAM"`
	TeamName         *string                `json:"team_name"`
	TeamMemberIds    []int                  `json:"team_member_ids"`

	GradeId     *int  `json:"grade_id"`
	ExaminerIds []int `json:"examiner_ids"`
	ExamEventId *int  `json:"exam_event_id"`
	Level       *int  `json:"level"`

	SeminarId *int `json:"seminar_id"`

	Attachments []string `json:"attachments"`
	Notes       string   `json:"notes"`
}

type SubmissionReview struct {
	Notes string `json:"notes"`
}

func (s *SubmissionCreate) toModel() *repository.Submission {
	return &repository.Submission{
		Kind:             s.Kind,
		AthleteId:        s.AthleteId,
		CategoryId:       s.CategoryId,
		GroupId:          s.GroupId,
		PlacementClaimed: s.PlacementClaimed,
		ResultType:       s.ResultType,
		TeamName:         s.TeamName,
		TeamMemberIds:    toInt64Array(s.TeamMemberIds),
		GradeId:          s.GradeId,
		ExaminerIds:      toInt64Array(s.ExaminerIds),
		ExamEventId:      s.ExamEventId,
		Level:            s.Level,
		SeminarId:        s.SeminarId,
		Attachments:      pq.StringArray(s.Attachments),
		Notes:            s.Notes,
	}
}

type Submission struct {
	Id               int                         `json:"id" binding:"required"`
	Kind             repository.SubmissionKind   `json:"kind" binding:"required"`
	AthleteId        int                         `json:"athlete_id" binding:"required"`
	Status           repository.SubmissionStatus `json:"status" binding:"required"`
	CategoryId       *int                        `json:"category_id"`
	GroupId          *int                        `json:"group_id"`
	PlacementClaimed *int                        `json:"placement_claimed"`
	ResultType       *repository.ResultType      `json:"result_type"`
	TeamName         *string                     `json:"team_name"`
	TeamMemberIds    []int                       `json:"team_member_ids"`
	GradeId          *int                        `json:"grade_id"`
	ExaminerIds      []int                       `json:"examiner_ids"`
	ExamEventId      *int                        `json:"exam_event_id"`
	Level            *int                        `json:"level"`
	SeminarId        *int                        `json:"seminar_id"`
	Attachments      []string                    `json:"attachments"`
	Notes            string                      `json:"notes"`
	AdminNotes       *string                     `json:"admin_notes"`
	ReviewerId       *int                        `json:"reviewer_id"`
	SubmittedAt      time.Time                   `json:"submitted_at" binding:"required"`
	ReviewedAt       *time.Time                  `json:"reviewed_at"`
	Category         *Category                   `json:"category"`
}

func toSubmissionResponse(submission *repository.Submission) *Submission {
	return &Submission{
		Id:               submission.Id,
		Kind:             submission.Kind,
		AthleteId:        submission.AthleteId,
		Status:           submission.Status,
		CategoryId:       submission.CategoryId,
		GroupId:          submission.GroupId,
		PlacementClaimed: submission.PlacementClaimed,
		ResultType:       submission.ResultType,
		TeamName:         submission.TeamName,
		TeamMemberIds:    toIntSlice(submission.TeamMemberIds),
		GradeId:          submission.GradeId,
		ExaminerIds:      toIntSlice(submission.ExaminerIds),
		ExamEventId:      submission.ExamEventId,
		Level:            submission.Level,
		SeminarId:        submission.SeminarId,
		Attachments:      submission.Attachments,
		Notes:            submission.Notes,
		AdminNotes:       submission.AdminNotes,
		ReviewerId:       submission.ReviewerId,
		SubmittedAt:      submission.SubmittedAt,
		ReviewedAt:       submission.ReviewedAt,
		Category:         toCategoryResponse(submission.Category),
	}
}

func toInt64Array(input []int) pq.Int64Array {
	if len(input) == 0 {
		return nil
	}
	output := make(pq.Int64Array, len(input))
	for i, v := range input {
		output[i] = int64(v)
	}
	return output
}

func toIntSlice(input pq.Int64Array) []int {
	if len(input) == 0 {
		return nil
	}
	output := make([]int, len(input))
	for i, v := range input {
		output[i] = int(v)
	}
	return output
}
