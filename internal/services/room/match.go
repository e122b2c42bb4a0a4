package room

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/board"
	"github.com/mcoot/wordcascade/internal/storage"
)

const historyWriteTimeout = 5 * time.Second

// StartMatch moves the lobby into the countdown. Only the host may start, and
// every connected player must be ready.
func (r *Room) StartMatch(id model.PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(id) == nil {
		return model.ErrNotInRoom
	}
	if r.hostID != id {
		return model.ErrNotHost
	}
	if r.status != model.MatchStatusLobby {
		return model.ErrGameInProgress
	}
	connected := r.connectedLocked()
	if len(connected) < MinPlayers {
		return model.ErrInsufficientPlayers
	}
	for _, p := range connected {
		if !p.IsReady {
			return model.ErrPlayersNotReady
		}
	}

	for _, p := range r.players {
		p.ResetScores()
	}
	r.lastActivity = r.clock.Now()
	r.logger.Info().Int("players", len(connected)).Int("rounds", r.settings.TotalRounds).Msg("match starting")

	r.enterStartingLocked()
	return nil
}

// ForceEndRound ends the active round immediately. Host only.
func (r *Room) ForceEndRound(id model.PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(id) == nil {
		return model.ErrNotInRoom
	}
	if r.hostID != id {
		return model.ErrNotHost
	}
	if r.status != model.MatchStatusActive {
		return model.ErrNoActiveRound
	}

	r.logger.Info().Int("round", r.currentRound).Msg("round force-ended by host")
	r.enterRoundEndLocked()
	return nil
}

// Status returns the current phase
func (r *Room) Status() model.MatchStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// nextEpochLocked invalidates every timer and in-flight generation of the current phase
func (r *Room) nextEpochLocked() {
	r.epoch++
	for name, t := range r.timers {
		t.Stop()
		delete(r.timers, name)
	}
	if r.genCancel != nil {
		r.genCancel()
		r.genCancel = nil
	}
	r.pendingBoard = nil
	r.delayDone = false
	r.regenerating = false
}

// scheduleLocked runs fn under the room lock after d, unless the phase has
// changed or the room has closed by then. A timer with the same name is replaced.
func (r *Room) scheduleLocked(name string, d time.Duration, fn func()) {
	if t, ok := r.timers[name]; ok {
		t.Stop()
	}
	epoch := r.epoch
	r.timers[name] = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || r.epoch != epoch {
			return
		}
		delete(r.timers, name)
		fn()
	})
}

// generateLocked requests a board in the background. The callbacks run under
// the room lock and are skipped if the phase moved on while generating.
func (r *Room) generateLocked(onReady func(*model.GameBoard), onFail func(error)) {
	ctx, cancel := context.WithCancel(context.Background())
	if r.genCancel != nil {
		r.genCancel()
	}
	r.genCancel = cancel
	epoch := r.epoch

	go func() {
		defer cancel()
		b, err := r.deps.Boards.Generate(ctx)

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || r.epoch != epoch {
			return
		}
		r.genCancel = nil
		if err == nil && b == nil {
			err = model.ErrBoardNotReady
		}
		if err != nil {
			onFail(err)
			return
		}
		onReady(b)
	}()
}

func (r *Room) enterStartingLocked() {
	r.nextEpochLocked()
	r.status = model.MatchStatusStarting
	r.currentRound = 0
	r.board = nil
	r.checksum = ""

	r.broadcastLocked(model.EventMatchStarting, model.MatchStartingPayload{
		CountdownMs: r.cfg.Countdown.Milliseconds(),
		TotalRounds: r.settings.TotalRounds,
	})

	r.prepareRoundLocked(1, r.cfg.Countdown)
}

// prepareRoundLocked waits for both the delay and a fresh board before
// activating the given round
func (r *Room) prepareRoundLocked(round int, delay time.Duration) {
	r.scheduleLocked("delay", delay, func() {
		r.delayDone = true
		r.maybeActivateLocked(round)
	})
	r.generateLocked(func(b *model.GameBoard) {
		r.pendingBoard = b
		r.maybeActivateLocked(round)
	}, func(err error) {
		r.logger.Error().Err(err).Int("round", round).Msg("board generation failed, returning to lobby")
		r.returnToLobbyLocked()
	})
}

func (r *Room) maybeActivateLocked(round int) {
	if !r.delayDone || r.pendingBoard == nil {
		return
	}
	r.activateLocked(round, r.pendingBoard)
}

func (r *Room) activateLocked(round int, b *model.GameBoard) {
	r.nextEpochLocked()

	now := r.clock.Now()
	r.status = model.MatchStatusActive
	r.currentRound = round
	r.board = b
	r.sequence++
	r.checksum = board.Checksum(b)
	r.roundStart = now
	r.deadline = now.Add(r.settings.RoundDuration)
	r.lastSecond = -1
	for _, p := range r.players {
		p.RoundScore = 0
		p.LastWordTimestamp = time.Time{}
	}

	r.broadcastLocked(model.EventMatchStarted, model.MatchStartedPayload{
		RoundNumber:     r.currentRound,
		TotalRounds:     r.settings.TotalRounds,
		Board:           r.board,
		Checksum:        r.checksum,
		SequenceNumber:  r.sequence,
		RoundDurationMs: r.settings.RoundDuration.Milliseconds(),
		TimeRemainingMs: r.settings.RoundDuration.Milliseconds(),
	})
	r.verifyChecksumLocked()

	r.logger.Info().
		Int("round", r.currentRound).
		Str("checksum", r.checksum).
		Uint64("seq", r.sequence).
		Msg("round started")

	r.scheduleTickLocked()
	r.scheduleResyncLocked()
}

func (r *Room) scheduleTickLocked() {
	next := r.cfg.TickInterval
	if remaining := r.timeRemainingLocked(); remaining < next {
		next = remaining
	}
	r.scheduleLocked("tick", next, r.tickLocked)
}

func (r *Room) tickLocked() {
	remaining := r.timeRemainingLocked()
	if remaining <= 0 {
		r.enterRoundEndLocked()
		return
	}

	seconds := int(math.Ceil(remaining.Seconds()))
	if seconds != r.lastSecond || remaining <= r.cfg.FinalSeconds {
		r.lastSecond = seconds
		r.broadcastLocked(model.EventMatchTimer, model.TimerPayload{
			TimeRemainingMs:  remaining.Milliseconds(),
			SecondsRemaining: seconds,
		})
	}
	r.scheduleTickLocked()
}

func (r *Room) scheduleResyncLocked() {
	if r.cfg.ResyncInterval <= 0 {
		return
	}
	r.scheduleLocked("resync", r.cfg.ResyncInterval, func() {
		r.broadcastSyncLocked(model.SyncReasonPeriodic)
		r.scheduleResyncLocked()
	})
}

func (r *Room) enterRoundEndLocked() {
	r.nextEpochLocked()
	r.status = model.MatchStatusRoundEnd

	complete := r.currentRound >= r.settings.TotalRounds
	r.broadcastLocked(model.EventRoundEnd, model.RoundEndPayload{
		RoundNumber:     r.currentRound,
		TotalRounds:     r.settings.TotalRounds,
		IsMatchComplete: complete,
		Results:         r.rankedLocked(),
	})
	for _, p := range r.players {
		p.RoundScore = 0
	}

	r.logger.Info().Int("round", r.currentRound).Bool("match_complete", complete).Msg("round ended")

	if complete {
		r.scheduleLocked("delay", r.cfg.RoundEndDelay, r.enterFinishedLocked)
		return
	}
	r.prepareRoundLocked(r.currentRound+1, r.cfg.RoundEndDelay)
}

func (r *Room) enterFinishedLocked() {
	r.nextEpochLocked()
	r.status = model.MatchStatusFinished

	ranked := r.rankedLocked()
	result := model.MatchResult{
		FinalScores: ranked,
		FinishedAt:  r.clock.Now(),
	}
	payload := model.MatchFinishedPayload{Results: ranked}
	if len(ranked) > 0 {
		result.WinnerID = ranked[0].PlayerID
		payload.WinnerID = ranked[0].PlayerID
		payload.WinnerUsername = ranked[0].Username
	}

	r.history = append(r.history, result)
	if len(r.history) > storage.DefaultHistoryLimit {
		r.history = r.history[len(r.history)-storage.DefaultHistoryLimit:]
	}
	r.persistResult(result)

	r.broadcastLocked(model.EventMatchFinished, payload)
	r.logger.Info().Str("winner", string(result.WinnerID)).Msg("match finished")

	r.scheduleLocked("delay", r.cfg.FinishDelay, r.returnToLobbyLocked)
}

func (r *Room) persistResult(result model.MatchResult) {
	if r.deps.History == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
		defer cancel()
		if err := r.deps.History.AppendMatchResult(ctx, r.code, &result); err != nil {
			r.logger.Warn().Err(err).Msg("failed to store match result")
		}
	}()
}

func (r *Room) returnToLobbyLocked() {
	r.nextEpochLocked()
	r.status = model.MatchStatusLobby
	r.currentRound = 0
	r.board = nil
	r.checksum = ""
	for _, p := range r.players {
		p.ResetScores()
		p.IsReady = false
	}

	r.broadcastLocked(model.EventReturnToLobby, model.RoomPayload{RoomCode: r.code, Room: r.snapshotLocked()})
	r.logger.Info().Msg("returned to lobby")
}

func (r *Room) broadcastSyncLocked(reason string) {
	if r.board == nil {
		return
	}
	r.broadcastLocked(model.EventBoardSync, r.syncPayloadLocked(reason))
}

func (r *Room) syncPayloadLocked(reason string) model.BoardSyncPayload {
	return model.BoardSyncPayload{
		Board:           r.board,
		Checksum:        r.checksum,
		SequenceNumber:  r.sequence,
		TimeRemainingMs: r.timeRemainingLocked().Milliseconds(),
		RoundNumber:     r.currentRound,
		Reason:          reason,
	}
}

// verifyChecksumLocked recomputes the checksum after a broadcast. A mismatch
// means the board changed underneath the announcement, so everyone is resynced.
func (r *Room) verifyChecksumLocked() {
	actual := board.Checksum(r.board)
	if actual == r.checksum {
		return
	}
	r.logger.Error().
		Bool("critical", true).
		Str("expected", r.checksum).
		Str("actual", actual).
		Uint64("seq", r.sequence).
		Msg("board checksum changed after broadcast")
	r.checksum = actual
	r.broadcastSyncLocked(model.SyncReasonChecksumMismatch)
}

func isCancelled(err error) bool {
	return errors.Is(err, model.ErrGenerationCancelled) || errors.Is(err, context.Canceled)
}
