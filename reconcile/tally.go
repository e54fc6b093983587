package reconcile

import "fedman/repository"

type MedalTally struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

// CountMedals tallies the reconciled rows. Only approved rows count; a
// pending or rejected claim is visible in the list but earns nothing.
func CountMedals(results []*Result) MedalTally {
	tally := MedalTally{}
	for _, result := range results {
		if result.Status != repository.StatusApproved {
			continue
		}
		switch result.Placement {
		case 1:
			tally.Gold++
		case 2:
			tally.Silver++
		case 3:
			tally.Bronze++
		}
	}
	return tally
}
