package repository

import (
	"context"
	"fmt"
	"time"

	"esports-sim/internal/domain"
)

// KD is a kills/deaths aggregate over some window of matches.
type KD struct {
	Kills   int
	Deaths  int
	Matches int
}

// Ratio is kills per death; a deathless window counts every kill.
func (k KD) Ratio() float64 {
	if k.Deaths == 0 {
		return float64(k.Kills)
	}
	return float64(k.Kills) / float64(k.Deaths)
}

func (s *Store) CreatePlayerStats(ctx context.Context, stats []domain.PlayerStat) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		for i := range stats {
			st := &stats[i]
			st.Date = domain.Day(st.Date)
			res, err := s.conn(ctx).ExecContext(ctx, `
				INSERT INTO player_stats (match_id, player_id, team_id, kills, deaths, assists, date)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (match_id, player_id) DO UPDATE SET
					kills = excluded.kills, deaths = excluded.deaths, assists = excluded.assists`,
				st.MatchID, st.PlayerID, st.TeamID, st.Kills, st.Deaths, st.Assists, st.Date,
			)
			if err != nil {
				return fmt.Errorf("failed to record stats of player %d: %w", st.PlayerID, err)
			}
			if st.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
}

// PlayerKD aggregates the player's last limit matches; limit 0 is lifetime.
func (s *Store) PlayerKD(ctx context.Context, playerID int64, limit int) (KD, error) {
	query := `
		SELECT COALESCE(SUM(kills), 0), COALESCE(SUM(deaths), 0), COUNT(*) FROM (
			SELECT kills, deaths FROM player_stats WHERE player_id = ?
			ORDER BY date DESC, id DESC`
	args := []any{playerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	query += `)`

	var kd KD
	if err := s.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&kd.Kills, &kd.Deaths, &kd.Matches); err != nil {
		return KD{}, fmt.Errorf("failed to aggregate stats of player %d: %w", playerID, err)
	}
	return kd, nil
}

// PlayerKDSince aggregates matches played on or after since.
func (s *Store) PlayerKDSince(ctx context.Context, playerID int64, since time.Time) (KD, error) {
	var kd KD
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(kills), 0), COALESCE(SUM(deaths), 0), COUNT(*)
		FROM player_stats WHERE player_id = ? AND date >= ?`, playerID, domain.Day(since),
	).Scan(&kd.Kills, &kd.Deaths, &kd.Matches)
	if err != nil {
		return KD{}, fmt.Errorf("failed to aggregate stats of player %d: %w", playerID, err)
	}
	return kd, nil
}

func (s *Store) ListPlayerStats(ctx context.Context, matchID int64) ([]domain.PlayerStat, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, match_id, player_id, team_id, kills, deaths, assists, date
		FROM player_stats WHERE match_id = ? ORDER BY id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PlayerStat
	for rows.Next() {
		var st domain.PlayerStat
		if err := rows.Scan(&st.ID, &st.MatchID, &st.PlayerID, &st.TeamID, &st.Kills, &st.Deaths, &st.Assists, &st.Date); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
