package scheduler

import (
	"errors"

	"github.com/stanstork/crewdispatch/internal/models"
)

var ErrNoCandidates = errors.New("no candidates")

// SelectCandidate picks candidates[(primaryPOID+slot) mod len(candidates)].
// The result depends only on its arguments.
func SelectCandidate(candidates []models.Candidate, primaryPOID int64, slot int) (models.Candidate, error) {
	if len(candidates) == 0 {
		return models.Candidate{}, ErrNoCandidates
	}
	n := int64(len(candidates))
	idx := (primaryPOID + int64(slot)) % n
	if idx < 0 {
		idx += n
	}
	return candidates[idx], nil
}
