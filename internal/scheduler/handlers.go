package scheduler

import (
	"context"

	"esports-sim/internal/domain"
)

func id(p domain.Payload) int64 {
	return p.(domain.IDPayload).ID
}

// done adapts an operation that never halts the day.
func done(fn func(ctx context.Context, p domain.Payload) error) Handler {
	return func(ctx context.Context, _ domain.CalendarEntry, p domain.Payload) (Action, error) {
		return Done, fn(ctx, p)
	}
}

func (s *Scheduler) dispatch() map[domain.CalendarType]Handler {
	return map[domain.CalendarType]Handler{
		domain.CalendarSeasonStart: done(func(ctx context.Context, _ domain.Payload) error {
			return s.tournament.StartSeason(ctx)
		}),
		domain.CalendarCompetitionStart: done(func(ctx context.Context, p domain.Payload) error {
			return s.tournament.StartCompetition(ctx, id(p))
		}),
		domain.CalendarCompetitionEnd: done(func(ctx context.Context, p domain.Payload) error {
			return s.tournament.EndCompetition(ctx, id(p))
		}),
		domain.CalendarMatchdayUser: s.matchday(true),
		domain.CalendarMatchdayNPC:  s.matchday(false),
		domain.CalendarEmailSend: done(func(ctx context.Context, p domain.Payload) error {
			return s.sess.Mail.Deliver(ctx, p.(domain.EmailPayload).EmailID)
		}),
		domain.CalendarTransferOfferResponse: done(func(ctx context.Context, p domain.Payload) error {
			return s.career.RespondTransfer(ctx, id(p))
		}),
		domain.CalendarTransferOfferExpiry: done(func(ctx context.Context, p domain.Payload) error {
			return s.career.ExpireOffer(ctx, id(p))
		}),
		domain.CalendarTransferOfferWarning: func(ctx context.Context, _ domain.CalendarEntry, p domain.Payload) (Action, error) {
			halt, err := s.career.WarnOffer(ctx, id(p))
			if err != nil || !halt {
				return Done, err
			}
			return Pause, nil
		},
		domain.CalendarSponsorshipResponse: done(func(ctx context.Context, p domain.Payload) error {
			return s.economy.RespondSponsorship(ctx, id(p))
		}),
		domain.CalendarSponsorshipPayment: done(func(ctx context.Context, p domain.Payload) error {
			return s.economy.PaySponsorship(ctx, id(p))
		}),
		domain.CalendarContractExpire: done(func(ctx context.Context, p domain.Payload) error {
			return s.career.ExpireContract(ctx, p.(domain.ContractPayload))
		}),
		domain.CalendarContractReview: done(func(ctx context.Context, p domain.Payload) error {
			return s.career.ReviewContract(ctx, p.(domain.ContractPayload))
		}),
		domain.CalendarContractExtensionEval: done(func(ctx context.Context, p domain.Payload) error {
			return s.career.EvaluateExtension(ctx, p.(domain.ContractPayload))
		}),
		domain.CalendarScoutingCheck: done(func(ctx context.Context, p domain.Payload) error {
			return s.career.Scout(ctx, id(p))
		}),
	}
}

// matchday plays a match, or halts on one the user has to play.
func (s *Scheduler) matchday(user bool) Handler {
	return func(ctx context.Context, _ domain.CalendarEntry, p domain.Payload) (Action, error) {
		halt, err := s.tournament.PlayMatchday(ctx, id(p), user)
		if err != nil || !halt {
			return Done, err
		}
		return Retain, nil
	}
}
