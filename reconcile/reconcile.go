package reconcile

import (
	"fmt"
	"sort"
	"time"

	"fedman/repository"
)

type Source = string

const (
	SourceSelfSubmitted Source = "self-submitted"
	SourceTeamMember    Source = "team-member"
	SourceOfficial      Source = "official"
)

const unknownCategoryLabel = "Unknown category"
const unknownCompetitionLabel = "Unknown competition"

// Result is one row of the merged achievement view. Derived on every read,
// never stored.
type Result struct {
	CompetitionName string
	CategoryName    string
	GroupName       *string
	Placement       int
	Type            repository.ResultType
	Source          Source
	Status          repository.SubmissionStatus
	TeamMembers     []int
	SubmittedAt     *time.Time
	SubmissionId    *int
}

// Reconcile merges an athlete's competition result submissions with the
// official category placements into a single deduplicated, ordered list.
//
// Official placements always win over a self-reported claim of the same
// achievement, and they alone never carry a review status other than
// approved. Rows are never dropped for unresolved categories, only by the
// dedup rule.
func Reconcile(athleteId int, submissions []*repository.Submission, placements []*repository.CategoryPlacement, teamPlacements []*repository.TeamPlacement) []*Result {
	results := make([]*Result, 0, len(submissions)+len(placements)+len(teamPlacements))
	official := make([]*Result, 0, len(placements)+len(teamPlacements))

	for _, placement := range placements {
		official = append(official, fromPlacement(athleteId, placement)...)
	}
	for _, placement := range teamPlacements {
		if row := fromTeamPlacement(athleteId, placement); row != nil {
			official = append(official, row)
		}
	}

	officialKeys := make(map[string]bool, len(official))
	for _, row := range official {
		officialKeys[resultKey(row)] = true
	}

	for _, submission := range submissions {
		row := fromSubmission(athleteId, submission)
		if row == nil {
			continue
		}
		// the official record supersedes the self-reported one
		if officialKeys[resultKey(row)] {
			continue
		}
		results = append(results, row)
	}
	results = append(results, official...)

	sortResults(results)
	return results
}

// resultKey is the dedup identity of an achievement. Matching on display
// names mirrors how placements are keyed upstream; switch to category ids
// here once they are carried end-to-end.
func resultKey(row *Result) string {
	return fmt.Sprintf("%s|%s|%d", row.CompetitionName, row.CategoryName, row.Placement)
}

func fromSubmission(athleteId int, submission *repository.Submission) *Result {
	if submission.Kind != repository.KindCompetitionResult || submission.PlacementClaimed == nil {
		return nil
	}
	source := SourceSelfSubmitted
	if submission.AthleteId != athleteId {
		if !containsAthlete(submission.TeamMemberIds, athleteId) {
			return nil
		}
		source = SourceTeamMember
	}
	resultType := repository.ResultIndividual
	if submission.IsTeamResult() || len(submission.TeamMemberIds) > 0 {
		resultType = repository.ResultTeam
	}
	submittedAt := submission.SubmittedAt
	row := &Result{
		CompetitionName: unknownCompetitionLabel,
		CategoryName:    unknownCategoryLabel,
		Placement:       *submission.PlacementClaimed,
		Type:            resultType,
		Source:          source,
		Status:          submission.Status,
		TeamMembers:     toIntSlice(submission.TeamMemberIds),
		SubmittedAt:     &submittedAt,
		SubmissionId:    &submission.Id,
	}
	if submission.Category != nil {
		row.CategoryName = submission.Category.Name
		row.GroupName = submission.Category.GroupName
		if submission.Category.Competition != nil {
			row.CompetitionName = submission.Category.Competition.Name
		}
	}
	return row
}

// fromPlacement emits one row per rank field naming the athlete. A placement
// claiming the same athlete at two ranks is an upstream data error and is
// passed through unrepaired.
func fromPlacement(athleteId int, placement *repository.CategoryPlacement) []*Result {
	ranks := make([]int, 0, 3)
	if placement.FirstPlaceId != nil && *placement.FirstPlaceId == athleteId {
		ranks = append(ranks, 1)
	}
	if placement.SecondPlaceId != nil && *placement.SecondPlaceId == athleteId {
		ranks = append(ranks, 2)
	}
	if placement.ThirdPlaceId != nil && *placement.ThirdPlaceId == athleteId {
		ranks = append(ranks, 3)
	}
	rows := make([]*Result, 0, len(ranks))
	for _, rank := range ranks {
		row := &Result{
			CompetitionName: unknownCompetitionLabel,
			CategoryName:    unknownCategoryLabel,
			Placement:       rank,
			Type:            repository.ResultIndividual,
			Source:          SourceOfficial,
			Status:          repository.StatusApproved,
		}
		fillCategory(row, placement.Category)
		rows = append(rows, row)
	}
	return rows
}

func fromTeamPlacement(athleteId int, placement *repository.TeamPlacement) *Result {
	if !containsAthlete(placement.MemberIds, athleteId) {
		return nil
	}
	row := &Result{
		CompetitionName: unknownCompetitionLabel,
		CategoryName:    unknownCategoryLabel,
		Placement:       placement.Rank,
		Type:            repository.ResultTeam,
		Source:          SourceOfficial,
		Status:          repository.StatusApproved,
		TeamMembers:     toIntSlice(placement.MemberIds),
	}
	fillCategory(row, placement.Category)
	return row
}

func fillCategory(row *Result, category *repository.Category) {
	if category == nil {
		return
	}
	row.CategoryName = category.Name
	row.GroupName = category.GroupName
	if category.Competition != nil {
		row.CompetitionName = category.Competition.Name
	}
}

// sortResults orders rows newest-submission-first; official rows carry no
// submission date and follow in placement order. The sort is stable so
// repeated calls over the same input produce identical output.
func sortResults(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.SubmittedAt != nil && b.SubmittedAt != nil {
			return a.SubmittedAt.After(*b.SubmittedAt)
		}
		if a.SubmittedAt != nil {
			return true
		}
		if b.SubmittedAt != nil {
			return false
		}
		return a.Placement < b.Placement
	})
}

func containsAthlete(memberIds []int64, athleteId int) bool {
	for _, id := range memberIds {
		if int(id) == athleteId {
			return true
		}
	}
	return false
}

func toIntSlice(memberIds []int64) []int {
	if len(memberIds) == 0 {
		return nil
	}
	out := make([]int, len(memberIds))
	for i, id := range memberIds {
		out[i] = int(id)
	}
	return out
}
