package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type CalendarType string

// The string values are persisted and must stay stable across releases.
const (
	CalendarSeasonStart           CalendarType = "seasonstart"
	CalendarCompetitionStart      CalendarType = "competitionstart"
	CalendarCompetitionEnd        CalendarType = "competitionend"
	CalendarMatchdayUser          CalendarType = "matchdayuser"
	CalendarMatchdayNPC           CalendarType = "matchdaynpc"
	CalendarEmailSend             CalendarType = "emailsend"
	CalendarTransferOfferResponse CalendarType = "transferofferresponse"
	CalendarTransferOfferExpiry   CalendarType = "transferofferexpiry"
	CalendarTransferOfferWarning  CalendarType = "transferofferwarning"
	CalendarSponsorshipResponse   CalendarType = "sponsorshipofferresponse"
	CalendarSponsorshipPayment    CalendarType = "sponsorshippayment"
	CalendarContractExpire        CalendarType = "contractexpire"
	CalendarContractReview        CalendarType = "contractreview"
	CalendarContractExtensionEval CalendarType = "contractextension"
	CalendarScoutingCheck         CalendarType = "scoutingcheck"
)

// ContractTypes are soft-deleted together when a player leaves a team.
var ContractTypes = []CalendarType{
	CalendarContractExpire,
	CalendarContractReview,
	CalendarContractExtensionEval,
}

type CalendarEntry struct {
	ID        int64
	Date      time.Time
	Type      CalendarType
	Payload   string
	Completed bool
}

// Payload is the decoded form of a calendar entry's payload column.
type Payload interface {
	Encode() string
}

type NoPayload struct{}

func (NoPayload) Encode() string { return "" }

// IDPayload references a single row: competition, match, transfer,
// sponsorship or player depending on the entry type.
type IDPayload struct {
	ID int64
}

func (p IDPayload) Encode() string { return strconv.FormatInt(p.ID, 10) }

type EmailPayload struct {
	EmailID string
}

func (p EmailPayload) Encode() string { return p.EmailID }

// ContractPayload pins a contract entry to the team it was scheduled for, so
// entries left over from a previous team resolve to no-ops.
type ContractPayload struct {
	PlayerID int64
	TeamID   int64
}

func (p ContractPayload) Encode() string {
	b, _ := json.Marshal([]int64{p.PlayerID, p.TeamID})
	return string(b)
}

// NewEntry builds an entry for scheduling.
func NewEntry(date time.Time, t CalendarType, p Payload) CalendarEntry {
	return CalendarEntry{Date: Day(date), Type: t, Payload: p.Encode()}
}

// DecodePayload parses raw according to the entry type.
func DecodePayload(t CalendarType, raw string) (Payload, error) {
	switch t {
	case CalendarSeasonStart:
		return NoPayload{}, nil
	case CalendarEmailSend:
		if raw == "" {
			return nil, fmt.Errorf("empty email payload")
		}
		return EmailPayload{EmailID: raw}, nil
	case CalendarContractExpire, CalendarContractReview, CalendarContractExtensionEval:
		var ids []int64
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, fmt.Errorf("failed to decode contract payload %q: %w", raw, err)
		}
		if len(ids) != 2 {
			return nil, fmt.Errorf("contract payload %q must hold [playerId, teamId]", raw)
		}
		return ContractPayload{PlayerID: ids[0], TeamID: ids[1]}, nil
	case CalendarCompetitionStart, CalendarCompetitionEnd,
		CalendarMatchdayUser, CalendarMatchdayNPC,
		CalendarTransferOfferResponse, CalendarTransferOfferExpiry, CalendarTransferOfferWarning,
		CalendarSponsorshipResponse, CalendarSponsorshipPayment,
		CalendarScoutingCheck:
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode id payload %q: %w", raw, err)
		}
		return IDPayload{ID: id}, nil
	}
	return nil, fmt.Errorf("unknown calendar type %q", t)
}
