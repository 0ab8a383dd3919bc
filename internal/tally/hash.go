package tally

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"codema-service/internal/models"
)

// canonicalRecord is the serialized form of the finalization inputs. Field
// order and vote ordering are fixed so the digest is reproducible from the
// persisted result.
type canonicalRecord struct {
	SessionID string              `json:"session_id"`
	Votes     []canonicalVote     `json:"votes"`
	Stats     Stats               `json:"stats"`
	Rule      models.MajorityRule `json:"rule"`
	ClosedAt  string              `json:"closed_at"`
}

type canonicalVote struct {
	CouncilorID uint   `json:"councilor_id"`
	OptionID    string `json:"option_id,omitempty"`
	Impedimento bool   `json:"impedimento,omitempty"`
}

// FinalHash computes the tamper-evidence digest binding a session's outcome
// to its inputs. Recomputing it from the persisted votes and stats must
// reproduce the stored value exactly.
func FinalHash(sessionID string, votes []models.Vote, stats Stats, rule models.MajorityRule, closedAt time.Time) string {
	cvs := make([]canonicalVote, 0, len(votes))
	for _, v := range votes {
		cv := canonicalVote{CouncilorID: v.CouncilorID, Impedimento: v.Impedimento}
		if v.OptionID != nil {
			cv.OptionID = *v.OptionID
		}
		cvs = append(cvs, cv)
	}
	sort.Slice(cvs, func(i, j int) bool { return cvs[i].CouncilorID < cvs[j].CouncilorID })

	rec := canonicalRecord{
		SessionID: sessionID,
		Votes:     cvs,
		Stats:     stats,
		Rule:      rule,
		ClosedAt:  closedAt.UTC().Format(time.RFC3339Nano),
	}

	// json.Marshal sorts map keys, so the encoding is stable
	raw, err := json.Marshal(rec)
	if err != nil {
		// every field is a plain value; marshal cannot fail
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
