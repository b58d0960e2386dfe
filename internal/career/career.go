// Package career moves players between teams: offers and their responses,
// contract reviews, extensions, expiries and roster changes.
package career

import (
	"context"
	"errors"
	"time"

	"esports-sim/internal/constants"
	"esports-sim/internal/domain"
	"esports-sim/internal/repository"
	"esports-sim/internal/session"

	"github.com/rs/zerolog"
)

var (
	ErrOfferExpired = errors.New("offer has expired")
	ErrOfferClosed  = errors.New("offer is no longer open")
	ErrOfferPending = errors.New("an offer for this player is already pending")
	ErrNoUserTeam   = errors.New("no team to make offers from")
)

// Matchdays re-derives which of a team's matchdays belong to the user.
type Matchdays interface {
	ResyncMatchdays(ctx context.Context, teamID int64) error
}

type Service struct {
	sess      *session.Session
	matchdays Matchdays
	logger    zerolog.Logger
}

func New(sess *session.Session, matchdays Matchdays) *Service {
	return &Service{
		sess:      sess,
		matchdays: matchdays,
		logger:    sess.Logger.With().Str("component", "career").Logger(),
	}
}

var pendingTransfer = []domain.TransferStatus{domain.TransferTeamPending, domain.TransferTeamAccepted, domain.TransferPlayerPending}

func contractEnd(from time.Time, years int) time.Time {
	return domain.AddDays(from, years*constants.SeasonLength)
}

// winRate is the share of wins in the team's last few results, or -1 without
// any.
func (s *Service) winRate(ctx context.Context, teamID int64) (float64, error) {
	results, err := s.sess.Store.RecentResults(ctx, teamID, constants.FormWindowMatches)
	if err != nil || len(results) == 0 {
		return -1, err
	}
	wins := 0
	for _, r := range results {
		if r == domain.ResultWin {
			wins++
		}
	}
	return float64(wins) / float64(len(results)), nil
}

// completeContractEntries soft-deletes the player's pending contract entries
// for teamID.
func (s *Service) completeContractEntries(ctx context.Context, playerID, teamID int64) error {
	no := false
	payload := domain.ContractPayload{PlayerID: playerID, TeamID: teamID}.Encode()
	_, err := s.sess.Store.CompleteEntries(ctx, repository.CalendarFilter{
		Types:     domain.ContractTypes,
		Payload:   &payload,
		Completed: &no,
	})
	return err
}

// scheduleContract replaces the contract entries of the user's player on
// their team: expiry, the extension check and the first weekly review.
func (s *Service) scheduleContract(ctx context.Context, p *domain.Profile, player *domain.Player) error {
	if player.TeamID == nil || player.ContractEnd == nil || !session.IsUserPlayer(p, player.ID) {
		return nil
	}
	if err := s.completeContractEntries(ctx, player.ID, *player.TeamID); err != nil {
		return err
	}

	payload := domain.ContractPayload{PlayerID: player.ID, TeamID: *player.TeamID}
	eval := domain.AddDays(*player.ContractEnd, -constants.ExtensionWindowDays)
	if !eval.After(p.Date) {
		eval = domain.AddDays(p.Date, 1)
	}
	entries := []domain.CalendarEntry{
		domain.NewEntry(*player.ContractEnd, domain.CalendarContractExpire, payload),
		domain.NewEntry(eval, domain.CalendarContractExtensionEval, payload),
		domain.NewEntry(domain.AddDays(p.Date, constants.ReviewIntervalDays), domain.CalendarContractReview, payload),
	}
	for i := range entries {
		if err := s.sess.Store.Schedule(ctx, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// contractPlayer loads the player a contract entry refers to. Entries left
// from a team the player has since left resolve to nil.
func (s *Service) contractPlayer(ctx context.Context, payload domain.ContractPayload) (*domain.Player, error) {
	player, err := s.sess.Store.GetPlayer(ctx, payload.PlayerID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn().Int64("player_id", payload.PlayerID).Msg("contract entry for missing player")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if player.TeamID == nil || *player.TeamID != payload.TeamID {
		s.logger.Info().
			Int64("player_id", player.ID).
			Int64("team_id", payload.TeamID).
			Msg("contract entry for a former team, skipping")
		return nil, nil
	}
	return player, nil
}
