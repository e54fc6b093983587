package controller

import (
	"strconv"
	"time"

	"fedman/app_error"
	"fedman/repository"
	"fedman/service"
	"fedman/utils"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CompetitionController struct {
	competitionService *service.CompetitionService
}

func NewCompetitionController(db *gorm.DB) *CompetitionController {
	return &CompetitionController{
		competitionService: service.NewCompetitionService(db),
	}
}

func setupCompetitionController(db *gorm.DB, cacheStore persistence.CacheStore) []RouteInfo {
	e := NewCompetitionController(db)
	baseUrl := "competitions"
	// reference lookups only, safe to serve slightly stale
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: cache.CachePage(cacheStore, time.Minute, e.getCompetitionsHandler())},
		{Method: "GET", Path: "/:competition_id/categories", HandlerFunc: cache.CachePage(cacheStore, time.Minute, e.getCategoriesHandler())},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id GetCompetitions
// @Description Lists competitions, newest first
// @Tags competition
// @Produce json
// @Success 200 {array} Competition
// @Router /competitions [get]
func (e *CompetitionController) getCompetitionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		competitions, err := e.competitionService.GetCompetitions()
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(competitions, toCompetitionResponse))
	}
}

// @id GetCategoriesForCompetition
// @Description Lists the categories of a competition
// @Tags competition
// @Produce json
// @Param competition_id path int true "Competition Id"
// @Success 200 {array} Category
// @Router /competitions/{competition_id}/categories [get]
func (e *CompetitionController) getCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		competitionId, err := strconv.Atoi(c.Param("competition_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		categories, err := e.competitionService.GetCategoriesForCompetition(competitionId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(categories, toCategoryResponse))
	}
}

type Competition struct {
	Id        int       `json:"id" binding:"required"`
	Name      string    `json:"name" binding:"required"`
	Location  string    `json:"location"`
	StartDate time.Time `json:"start_date"`
}

type Category struct {
	Id            int     `json:"id" binding:"required"`
	CompetitionId int     `json:"competition_id" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	GroupName     *string `json:"group_name"`
}

func toCompetitionResponse(competition *repository.Competition) *Competition {
	return &Competition{
		Id:        competition.Id,
		Name:      competition.Name,
		Location:  competition.Location,
		StartDate: competition.StartDate,
	}
}

func toCategoryResponse(category *repository.Category) *Category {
	if category == nil {
		return nil
	}
	return &Category{
		Id:            category.Id,
		CompetitionId: category.CompetitionId,
		Name:          category.Name,
		GroupName:     category.GroupName,
	}
}
