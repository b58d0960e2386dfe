// Package economy moves money and ratings around: prizes, wages, sponsorships
// and Elo.
package economy

import (
	"esports-sim/internal/session"

	"github.com/rs/zerolog"
)

type Service struct {
	sess   *session.Session
	logger zerolog.Logger
}

func New(sess *session.Session) *Service {
	return &Service{
		sess:   sess,
		logger: sess.Logger.With().Str("component", "economy").Logger(),
	}
}
