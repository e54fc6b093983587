package reconcile

import (
	"testing"
	"time"

	"fedman/repository"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(i int) *int {
	return &i
}

func competitionCategory(competitionName string, categoryName string) *repository.Category {
	return &repository.Category{
		Id:   1,
		Name: categoryName,
		Competition: &repository.Competition{
			Id:   1,
			Name: competitionName,
		},
	}
}

func resultSubmission(id int, athleteId int, category *repository.Category, placement int, status repository.SubmissionStatus, submittedAt time.Time) *repository.Submission {
	return &repository.Submission{
		Id:               id,
		Kind:             repository.KindCompetitionResult,
		AthleteId:        athleteId,
		Status:           status,
		PlacementClaimed: intPtr(placement),
		Category:         category,
		SubmittedAt:      submittedAt,
	}
}

func TestOfficialPlacementWinsOverSelfSubmitted(t *testing.T) {
	category := competitionCategory("Spring Open", "Kata Senior")
	submissions := []*repository.Submission{
		resultSubmission(1, 10, category, 1, repository.StatusApproved, baseTime),
	}
	placements := []*repository.CategoryPlacement{
		{Id: 1, CategoryId: 1, FirstPlaceId: intPtr(10), Category: category},
	}

	results := Reconcile(10, submissions, placements, nil)

	assert.Len(t, results, 1)
	assert.Equal(t, SourceOfficial, results[0].Source)
	assert.Equal(t, repository.StatusApproved, results[0].Status)
	assert.Equal(t, 1, results[0].Placement)
	assert.Equal(t, "Kata Senior", results[0].CategoryName)
}

func TestDifferentPlacementIsNotDeduplicated(t *testing.T) {
	category := competitionCategory("Spring Open", "Kata Senior")
	submissions := []*repository.Submission{
		resultSubmission(1, 10, category, 2, repository.StatusPending, baseTime),
	}
	placements := []*repository.CategoryPlacement{
		{Id: 1, CategoryId: 1, FirstPlaceId: intPtr(10), Category: category},
	}

	results := Reconcile(10, submissions, placements, nil)

	assert.Len(t, results, 2)
}

func TestMedalTallyCountsOnlyApprovedRows(t *testing.T) {
	category := competitionCategory("Spring Open", "Kumite U18")
	pending := resultSubmission(1, 10, category, 1, repository.StatusPending, baseTime)

	results := Reconcile(10, []*repository.Submission{pending}, nil, nil)
	assert.Len(t, results, 1)
	assert.Equal(t, MedalTally{}, CountMedals(results))

	pending.Status = repository.StatusApproved
	results = Reconcile(10, []*repository.Submission{pending}, nil, nil)
	assert.Equal(t, MedalTally{Gold: 1}, CountMedals(results))
}

func TestTallyAcrossSources(t *testing.T) {
	categoryA := competitionCategory("Spring Open", "Kata Senior")
	categoryB := competitionCategory("Winter Cup", "Kumite Senior")
	submissions := []*repository.Submission{
		resultSubmission(1, 10, categoryA, 2, repository.StatusApproved, baseTime),
		resultSubmission(2, 10, categoryB, 1, repository.StatusRejected, baseTime.Add(time.Hour)),
	}
	placements := []*repository.CategoryPlacement{
		{Id: 1, CategoryId: 2, ThirdPlaceId: intPtr(10), Category: categoryB},
	}

	results := Reconcile(10, submissions, placements, nil)

	assert.Len(t, results, 3)
	assert.Equal(t, MedalTally{Silver: 1, Bronze: 1}, CountMedals(results))
}

func TestTeamMemberRowsAreAttributed(t *testing.T) {
	category := competitionCategory("Team Nationals", "Team Kata")
	submission := resultSubmission(1, 20, category, 3, repository.StatusPending, baseTime)
	resultType := repository.ResultTeam
	submission.ResultType = &resultType
	submission.TeamMemberIds = pq.Int64Array{10, 30}

	results := Reconcile(10, []*repository.Submission{submission}, nil, nil)

	assert.Len(t, results, 1)
	assert.Equal(t, SourceTeamMember, results[0].Source)
	assert.Equal(t, repository.ResultTeam, results[0].Type)
	assert.Equal(t, []int{10, 30}, results[0].TeamMembers)
}

func TestUnrelatedSubmissionsAreExcluded(t *testing.T) {
	category := competitionCategory("Team Nationals", "Team Kata")
	other := resultSubmission(1, 20, category, 1, repository.StatusApproved, baseTime)

	results := Reconcile(10, []*repository.Submission{other}, nil, nil)

	assert.Empty(t, results)
}

func TestOfficialTeamPlacement(t *testing.T) {
	category := competitionCategory("Team Nationals", "Team Kumite")
	teamPlacements := []*repository.TeamPlacement{
		{Id: 1, CategoryId: 1, Rank: 2, TeamName: "Dragons", MemberIds: pq.Int64Array{10, 20, 30}, Category: category},
	}

	results := Reconcile(10, nil, nil, teamPlacements)

	assert.Len(t, results, 1)
	assert.Equal(t, SourceOfficial, results[0].Source)
	assert.Equal(t, repository.ResultTeam, results[0].Type)
	assert.Equal(t, 2, results[0].Placement)
	assert.Equal(t, MedalTally{Silver: 1}, CountMedals(results))
}

func TestConflictingPlacementRanksArePassedThrough(t *testing.T) {
	category := competitionCategory("Spring Open", "Kata Senior")
	// upstream data error: the same athlete at two ranks in one category
	placements := []*repository.CategoryPlacement{
		{Id: 1, CategoryId: 1, FirstPlaceId: intPtr(10), SecondPlaceId: intPtr(10), Category: category},
	}

	results := Reconcile(10, nil, placements, nil)

	assert.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Placement)
	assert.Equal(t, 2, results[1].Placement)
	assert.Equal(t, MedalTally{Gold: 1, Silver: 1}, CountMedals(results))
}

func TestMissingCategoryIsShownWithFallbackLabel(t *testing.T) {
	submission := resultSubmission(1, 10, nil, 1, repository.StatusPending, baseTime)

	results := Reconcile(10, []*repository.Submission{submission}, nil, nil)

	assert.Len(t, results, 1)
	assert.Equal(t, unknownCategoryLabel, results[0].CategoryName)
	assert.Equal(t, unknownCompetitionLabel, results[0].CompetitionName)
}

func TestOrderingNewestSubmissionsFirstThenOfficialByRank(t *testing.T) {
	categoryA := competitionCategory("Spring Open", "Kata Senior")
	categoryB := competitionCategory("Winter Cup", "Kumite Senior")
	categoryC := competitionCategory("Autumn Trophy", "Kata Junior")
	categoryD := competitionCategory("Summer Games", "Kumite Junior")
	submissions := []*repository.Submission{
		resultSubmission(1, 10, categoryA, 3, repository.StatusPending, baseTime),
		resultSubmission(2, 10, categoryB, 2, repository.StatusApproved, baseTime.Add(2*time.Hour)),
	}
	placements := []*repository.CategoryPlacement{
		{Id: 1, CategoryId: 3, ThirdPlaceId: intPtr(10), Category: categoryC},
		{Id: 2, CategoryId: 4, FirstPlaceId: intPtr(10), Category: categoryD},
	}

	results := Reconcile(10, submissions, placements, nil)

	assert.Len(t, results, 4)
	assert.Equal(t, "Kumite Senior", results[0].CategoryName)
	assert.Equal(t, "Kata Senior", results[1].CategoryName)
	assert.Equal(t, 1, results[2].Placement)
	assert.Equal(t, 3, results[3].Placement)
}

func TestReconcileIsDeterministic(t *testing.T) {
	category := competitionCategory("Spring Open", "Kata Senior")
	categoryB := competitionCategory("Spring Open", "Kumite Senior")
	submissions := []*repository.Submission{
		resultSubmission(1, 10, category, 1, repository.StatusApproved, baseTime),
		resultSubmission(2, 10, categoryB, 2, repository.StatusPending, baseTime),
	}
	placements := []*repository.CategoryPlacement{
		{Id: 1, CategoryId: 1, FirstPlaceId: intPtr(10), Category: category},
		{Id: 2, CategoryId: 2, SecondPlaceId: intPtr(10), Category: categoryB},
	}

	first := Reconcile(10, submissions, placements, nil)
	second := Reconcile(10, submissions, placements, nil)

	assert.Equal(t, first, second)
}
