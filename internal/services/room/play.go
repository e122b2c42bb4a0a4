package room

import (
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/board"
	"github.com/mcoot/wordcascade/internal/services/scoring"
)

// SubmitWord judges a word traced by a player. Rule violations are reported to
// the player as word:invalid and returned in the result rather than as errors.
// The cascade is computed, committed and broadcast without releasing the room lock.
func (r *Room) SubmitWord(id model.PlayerID, word string, path []model.Position) (scoring.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findLocked(id)
	if player == nil {
		return scoring.Result{}, model.ErrNotInRoom
	}
	if r.status != model.MatchStatusActive {
		return scoring.Result{}, model.ErrNoActiveRound
	}
	if r.board == nil {
		return scoring.Result{}, model.ErrBoardNotReady
	}

	now := r.clock.Now()
	r.lastActivity = now

	res := r.deps.Scorer.Evaluate(scoring.Submission{
		Word:       word,
		Path:       path,
		Board:      r.board,
		Difficulty: player.Difficulty,
		Settings:   r.settings,
		LastWordAt: player.LastWordTimestamp,
		Now:        now,
	})
	if !res.Valid {
		r.deps.Notifier.Send(id, model.EventWordInvalid, model.WordInvalidPayload{Word: res.Word, Reason: res.Reason})
		return res, nil
	}

	changes, err := r.deps.Boards.Cascade(r.board, path)
	if err != nil {
		return scoring.Result{}, err
	}
	next, err := board.ApplyChanges(r.board, changes)
	if err != nil {
		r.logger.Error().Err(err).Bool("critical", true).Uint64("seq", r.sequence).Msg("cascade could not be applied")
		r.broadcastSyncLocked(model.SyncReasonChecksumMismatch)
		return scoring.Result{}, err
	}

	r.sequence++
	changes.SequenceNumber = r.sequence
	changes.Timestamp = now
	r.board = next
	r.checksum = board.Checksum(next)

	player.Score += res.Points
	player.RoundScore += res.Points
	player.LastWordTimestamp = now

	r.deps.Notifier.Send(id, model.EventWordValid, model.WordValidPayload{
		Word:       res.Word,
		Points:     res.Points,
		TotalScore: player.Score,
		RoundScore: player.RoundScore,
		SpeedBonus: res.SpeedBonus,
		Path:       path,
	})
	r.broadcastLocked(model.EventTileChanges, model.TileChangesPayload{
		TileChanges: *changes,
		PlayerID:    id,
		Word:        res.Word,
		Checksum:    r.checksum,
	})
	r.verifyChecksumLocked()
	r.broadcastScoresLocked(player)

	r.logger.Debug().
		Str("player_id", string(id)).
		Str("word", res.Word).
		Int("points", res.Points).
		Uint64("seq", r.sequence).
		Msg("word accepted")

	if !r.regenerating && r.deps.Solver.IsDead(r.board, r.settings.DeadBoardThreshold) {
		r.logger.Info().Int("threshold", r.settings.DeadBoardThreshold).Msg("board is dead, regenerating")
		r.regenerateLocked(model.SyncReasonDeadBoard)
	}
	return res, nil
}

// Shuffle spends shuffleCost points of the player's total score to replace the
// board for everyone
func (r *Room) Shuffle(id model.PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findLocked(id)
	if player == nil {
		return model.ErrNotInRoom
	}
	if r.status != model.MatchStatusActive {
		return model.ErrNoActiveRound
	}
	if r.regenerating {
		return model.ErrBoardNotReady
	}
	if player.Score < r.settings.ShuffleCost {
		return model.ErrInsufficientScore
	}

	player.Score -= r.settings.ShuffleCost
	r.lastActivity = r.clock.Now()
	r.broadcastScoresLocked(player)

	r.logger.Info().Str("player_id", string(id)).Int("cost", r.settings.ShuffleCost).Msg("board shuffle requested")
	r.regenerateLocked(model.SyncReasonShuffle)
	return nil
}

// RequestBoard sends the current board snapshot to one player
func (r *Room) RequestBoard(id model.PlayerID) error {
	return r.SyncPlayer(id, model.SyncReasonRequested)
}

// SyncPlayer sends the current board, time and the player's score to one player
func (r *Room) SyncPlayer(id model.PlayerID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findLocked(id)
	if player == nil {
		return model.ErrNotInRoom
	}
	if r.board == nil || !r.status.InGame() {
		return model.ErrNoActiveRound
	}

	r.deps.Notifier.Send(id, model.EventBoardSync, r.syncPayloadLocked(reason))
	r.deps.Notifier.Send(id, model.EventScoreUpdate, model.ScoreUpdatePayload{
		PlayerID:   id,
		Score:      player.Score,
		RoundScore: player.RoundScore,
	})
	return nil
}

func (r *Room) broadcastScoresLocked(player *model.Player) {
	r.broadcastLocked(model.EventScoreUpdate, model.ScoreUpdatePayload{
		PlayerID:   player.ID,
		Score:      player.Score,
		RoundScore: player.RoundScore,
	})
	r.broadcastLocked(model.EventLeaderboardUpdate, model.LeaderboardPayload{Players: r.rankedLocked()})
}

// regenerateLocked replaces the board mid-round once a new one is generated.
// Submissions continue against the old board until then.
func (r *Room) regenerateLocked(reason string) {
	r.regenerating = true
	r.generateLocked(func(b *model.GameBoard) {
		r.regenerating = false
		r.board = b
		r.sequence++
		r.checksum = board.Checksum(b)
		r.broadcastSyncLocked(reason)
		r.verifyChecksumLocked()
		r.logger.Info().Str("reason", reason).Uint64("seq", r.sequence).Msg("board replaced")
	}, func(err error) {
		r.regenerating = false
		if isCancelled(err) {
			return
		}
		r.logger.Warn().Err(err).Str("reason", reason).Msg("board regeneration failed, keeping current board")
	})
}
