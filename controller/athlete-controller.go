package controller

import (
	"strconv"
	"time"

	"fedman/app_error"
	"fedman/reconcile"
	"fedman/repository"
	"fedman/service"
	"fedman/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AthleteController struct {
	athleteService *service.AthleteService
}

func NewAthleteController(db *gorm.DB) *AthleteController {
	return &AthleteController{
		athleteService: service.NewAthleteService(db),
	}
}

func setupAthleteController(db *gorm.DB) []RouteInfo {
	e := NewAthleteController(db)
	baseUrl := "athletes"
	routes := []RouteInfo{
		{Method: "GET", Path: "/:athlete_id/results", HandlerFunc: e.getReconciledResultsHandler()},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id GetReconciledResults
// @Description Returns the merged, deduplicated result list and medal tally for an athlete
// @Tags athlete
// @Produce json
// @Param athlete_id path int true "Athlete Id"
// @Success 200 {object} AthleteResults
// @Router /athletes/{athlete_id}/results [get]
func (e *AthleteController) getReconciledResultsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		athleteId, err := strconv.Atoi(c.Param("athlete_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		athleteResults, err := e.athleteService.GetReconciledResults(athleteId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toAthleteResultsResponse(athleteResults))
	}
}

type AthleteResults struct {
	AthleteId   int                  `json:"athlete_id" binding:"required"`
	AthleteName string               `json:"athlete_name" binding:"required"`
	Results     []*ReconciledResult  `json:"results" binding:"required"`
	Tally       reconcile.MedalTally `json:"medal_tally" binding:"required"`
}

type ReconciledResult struct {
	CompetitionName string                      `json:"competition_name" binding:"required"`
	CategoryName    string                      `json:"category_name" binding:"required"`
	GroupName       *string                     `json:"group_name"`
	Placement       int                         `json:"placement" binding:"required"`
	Type            repository.ResultType       `json:"type" binding:"required"`
	Source          reconcile.Source            `json:"source" binding:"required"`
	Status          repository.SubmissionStatus `json:"status" binding:"required"`
	TeamMembers     []int                       `json:"team_members"`
	SubmittedAt     *time.Time                  `json:"submitted_at"`
	SubmissionId    *int                        `json:"submission_id"`
}

func toAthleteResultsResponse(athleteResults *service.AthleteResults) *AthleteResults {
	return &AthleteResults{
		AthleteId:   athleteResults.Athlete.Id,
		AthleteName: athleteResults.Athlete.FullName(),
		Results:     utils.Map(athleteResults.Results, toReconciledResultResponse),
		Tally:       athleteResults.Tally,
	}
}

func toReconciledResultResponse(result *reconcile.Result) *ReconciledResult {
	return &ReconciledResult{
		CompetitionName: result.CompetitionName,
		CategoryName:    result.CategoryName,
		GroupName:       result.GroupName,
		Placement:       result.Placement,
		Type:            result.Type,
		Source:          result.Source,
		Status:          result.Status,
		TeamMembers:     result.TeamMembers,
		SubmittedAt:     result.SubmittedAt,
		SubmissionId:    result.SubmissionId,
	}
}
