package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/board"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <code>",
		Short: "Stream a room's events and track its board",
		Long: `Connect to the room's spectator stream and print events as they arrive.

The board is rebuilt locally from match:started and game:board-sync snapshots
and game:tile-changes deltas. Sequence gaps and checksum mismatches are
reported; the next snapshot brings the local board back in line.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(cmd, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(cmd *cobra.Command, roomCode string, jsonOutput bool) error {
	url := strings.TrimSuffix(cfg.ServerURL, "/") + "/rooms/" + roomPath(roomCode) + "/events"

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	w := cmd.OutOrStdout()
	if !jsonOutput {
		fmt.Fprintf(w, "Connected to room %s\n", strings.ToUpper(roomCode))
	}

	tracker := newBoardTracker(w, jsonOutput)
	err = readSSE(resp.Body, tracker.handle)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

// readSSE calls fn for every complete event in the stream
func readSSE(r io.Reader, fn func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				fn(currentEvent, strings.Join(dataLines, "\n"))
			}
			currentEvent = ""
			dataLines = nil
		}
	}
	return scanner.Err()
}

// boardTracker prints events and keeps a replica of the room's board
type boardTracker struct {
	w          io.Writer
	jsonOutput bool
	replica    *board.Replica
	// stale is set after a gap or mismatch until the next snapshot arrives
	stale bool
}

func newBoardTracker(w io.Writer, jsonOutput bool) *boardTracker {
	return &boardTracker{w: w, jsonOutput: jsonOutput, replica: board.NewReplica()}
}

// envelope is the spectator event body
type envelope struct {
	Event    model.EventType `json:"event"`
	RoomCode model.RoomCode  `json:"roomCode"`
	Data     json.RawMessage `json:"data"`
}

func (t *boardTracker) handle(event, data string) {
	t.print(event, data)

	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return
	}

	switch env.Event {
	case model.EventMatchStarted:
		var p model.MatchStartedPayload
		if json.Unmarshal(env.Data, &p) == nil && p.Board != nil {
			t.snapshot(p.Board, p.SequenceNumber, p.Checksum)
		}
	case model.EventBoardSync:
		var p model.BoardSyncPayload
		if json.Unmarshal(env.Data, &p) == nil && p.Board != nil {
			t.snapshot(p.Board, p.SequenceNumber, p.Checksum)
		}
	case model.EventTileChanges:
		var p model.TileChangesPayload
		if json.Unmarshal(env.Data, &p) == nil {
			t.delta(&p.TileChanges, p.Checksum)
		}
	}
}

func (t *boardTracker) snapshot(b *model.GameBoard, seq uint64, checksum string) {
	if err := t.replica.ApplySnapshot(b, seq, checksum); err != nil {
		t.report("snapshot rejected: %v", err)
		return
	}
	t.stale = false
	t.printBoard()
}

func (t *boardTracker) delta(changes *model.TileChanges, checksum string) {
	if t.stale {
		return
	}
	applied, err := t.replica.Apply(changes, checksum)
	switch {
	case errors.Is(err, model.ErrSequenceGap):
		t.stale = true
		t.report("sequence gap at %d, waiting for a board sync", changes.SequenceNumber)
	case errors.Is(err, model.ErrChecksumMismatch):
		t.stale = true
		t.report("checksum mismatch at %d, waiting for a board sync", changes.SequenceNumber)
	case err != nil:
		t.stale = true
		t.report("could not apply delta %d: %v", changes.SequenceNumber, err)
	case applied:
		t.printBoard()
	}
}

func (t *boardTracker) print(event, data string) {
	now := time.Now()

	if t.jsonOutput {
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		fmt.Fprintln(t.w, string(jsonData))
		return
	}

	displayData := strings.ReplaceAll(data, "\n", " ")
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Fprintf(t.w, "[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), event, displayData)
}

func (t *boardTracker) printBoard() {
	if t.jsonOutput {
		return
	}
	fmt.Fprintf(t.w, "  board #%d\n", t.replica.Sequence())
	NewOutput("text", t.w).printRows(t.replica.Board().Rows())
}

func (t *boardTracker) report(format string, args ...any) {
	if t.jsonOutput {
		return
	}
	fmt.Fprintf(t.w, "  ! "+format+"\n", args...)
}
