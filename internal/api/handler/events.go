package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoot/wordcascade/internal/api/request"
	"github.com/mcoot/wordcascade/internal/model"
)

func (g *Gateway) handleJoin(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	var req request.JoinRoomRequest
	if err := g.decode(raw, &req); err != nil {
		return err
	}

	sess = g.sessions.CreateOrUpdate(sess.SocketID, req.Username)

	if req.RoomCode == "" {
		settings := req.Settings.Apply(model.DefaultMatchSettings())
		_, _, err := g.rooms.CreateRoom(sess.ID, sess.Username, &settings)
		return err
	}
	if req.Settings != nil {
		return fmt.Errorf("%w: settings can only be given when creating a room", model.ErrInvalidRequest)
	}
	_, _, err := g.rooms.JoinRoom(model.RoomCode(req.RoomCode), sess.ID, sess.Username)
	return err
}

func (g *Gateway) handleLeave(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	if err := g.decode(raw, &request.Empty{}); err != nil {
		return err
	}
	return g.rooms.Leave(sess.ID)
}

func (g *Gateway) handleReady(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	var req request.ReadyRequest
	if err := g.decode(raw, &req); err != nil {
		return err
	}
	r, err := g.rooms.RoomFor(sess.ID)
	if err != nil {
		return err
	}
	return r.SetReady(sess.ID, *req.Ready)
}

func (g *Gateway) handleDifficulty(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	var req request.DifficultyRequest
	if err := g.decode(raw, &req); err != nil {
		return err
	}
	r, err := g.rooms.RoomFor(sess.ID)
	if err != nil {
		return err
	}
	return r.SetDifficulty(sess.ID, req.Difficulty)
}

func (g *Gateway) handleSettings(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	var req request.UpdateSettingsRequest
	if err := g.decode(raw, &req); err != nil {
		return err
	}
	r, err := g.rooms.RoomFor(sess.ID)
	if err != nil {
		return err
	}
	return r.UpdateSettings(sess.ID, req.Settings.Apply(r.Snapshot().Settings))
}

func (g *Gateway) handleStart(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	if err := g.decode(raw, &request.Empty{}); err != nil {
		return err
	}
	r, err := g.rooms.RoomFor(sess.ID)
	if err != nil {
		return err
	}
	return r.StartMatch(sess.ID)
}

func (g *Gateway) handleEndRound(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	if err := g.decode(raw, &request.Empty{}); err != nil {
		return err
	}
	r, err := g.rooms.RoomFor(sess.ID)
	if err != nil {
		return err
	}
	return r.ForceEndRound(sess.ID)
}

func (g *Gateway) handleSubmitWord(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	var req request.SubmitWordRequest
	if err := g.decode(raw, &req); err != nil {
		return err
	}
	r, err := g.rooms.RoomFor(sess.ID)
	if err != nil {
		return err
	}
	res, err := r.SubmitWord(sess.ID, req.Word, req.Path)
	if err != nil {
		return err
	}
	if res.Valid {
		g.sessions.RecordWord(sess.ID, res.Points)
	}
	return nil
}

func (g *Gateway) handleRequestBoard(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	if err := g.decode(raw, &request.Empty{}); err != nil {
		return err
	}
	r, err := g.rooms.RoomFor(sess.ID)
	if err != nil {
		return err
	}
	return r.RequestBoard(sess.ID)
}

func (g *Gateway) handleShuffle(_ context.Context, _ Conn, sess model.PlayerSession, raw []byte) error {
	if err := g.decode(raw, &request.Empty{}); err != nil {
		return err
	}
	r, err := g.rooms.RoomFor(sess.ID)
	if err != nil {
		return err
	}
	return r.Shuffle(sess.ID)
}

// handleReconnect moves a prior session onto this connection. The fresh
// session created on connect is discarded when a prior one is found.
func (g *Gateway) handleReconnect(_ context.Context, conn Conn, sess model.PlayerSession, raw []byte) error {
	var req request.ReconnectRequest
	if err := g.decode(raw, &req); err != nil {
		return err
	}

	prior, found := g.sessions.FindForReconnection(model.PlayerID(req.SessionID), req.Username)
	if !found {
		g.emit(conn, model.EventReconnectFailed, model.ReconnectFailedPayload{
			Reason:  reasonNoSession,
			Session: sessionPayload(sess),
		})
		return nil
	}

	if prior.ID != sess.ID {
		migrated, ok := g.sessions.Migrate(prior.SocketID, conn.ID())
		if !ok {
			g.emit(conn, model.EventReconnectFailed, model.ReconnectFailedPayload{
				Reason:  reasonNoSession,
				Session: sessionPayload(sess),
			})
			return nil
		}
		g.conns.Unbind(sess.ID, conn.ID())
		if old, bound := g.conns.Get(prior.ID); bound && old.ID() != conn.ID() {
			g.logger.Info().Str("player_id", string(prior.ID)).Str("old_socket_id", old.ID()).Msg("replacing live connection")
		}
		g.conns.Bind(prior.ID, conn)
		sess = migrated
	}

	payload := model.ReconnectSuccessPayload{Session: sessionPayload(sess)}
	r, snap, err := g.rooms.Reconnect(sess.ID)
	if err == nil {
		payload.Room = &snap
	} else if !errors.Is(err, model.ErrNotInRoom) {
		return err
	}
	g.emit(conn, model.EventReconnectSuccess, payload)

	if r != nil {
		if err := r.SyncPlayer(sess.ID, model.SyncReasonReconnect); err != nil && !errors.Is(err, model.ErrNoActiveRound) {
			return err
		}
	}

	g.logger.Info().Str("player_id", string(sess.ID)).Bool("in_room", r != nil).Msg("session reconnected")
	return nil
}
