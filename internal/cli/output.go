package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/wordcascade/internal/api/response"
	"github.com/mcoot/wordcascade/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.HealthResponse:
		o.printHealth(v)
	case response.RoomResponse:
		o.printRoom(v.Room)
	case response.HistoryResponse:
		o.printHistory(v)
	case response.SessionResponse:
		o.printSession(v)
	case BoardResult:
		o.printBoardResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// BoardResult is the output of the local board commands
type BoardResult struct {
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Rows     []string `json:"rows"`
	Checksum string   `json:"checksum"`
	Words    []string `json:"words"`
}

func (o *Output) printHealth(h response.HealthResponse) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Dictionary: loaded=%t words=%d\n", h.DictionaryLoaded, h.WordCount)
	fmt.Fprintf(o.w, "Sessions: %d\n", h.ActiveSessions)
	fmt.Fprintf(o.w, "Rooms: %d\n", h.ActiveRooms)
	fmt.Fprintf(o.w, "Board cache: %d\n", h.BoardCacheDepth)
}

func (o *Output) printRoom(r model.RoomSnapshot) {
	fmt.Fprintf(o.w, "Room: %s\n", r.RoomCode)
	state := "lobby"
	if r.IsGameActive {
		state = "in game"
	}
	fmt.Fprintf(o.w, "State: %s\n", state)
	fmt.Fprintf(o.w, "Rounds: %d x %s\n", r.Settings.TotalRounds, r.Settings.RoundDuration)
	fmt.Fprintf(o.w, "Players (%d/%d):\n", len(r.Players), r.MaxPlayers)
	for _, p := range r.Players {
		var tags []string
		if p.ID == r.HostID {
			tags = append(tags, "host")
		}
		if p.IsReady {
			tags = append(tags, "ready")
		}
		if !p.IsConnected {
			tags = append(tags, "disconnected")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(o.w, "  - %s (%s) %s score=%d%s\n", p.Username, p.ID, p.Difficulty, p.Score, suffix)
	}
}

func (o *Output) printHistory(h response.HistoryResponse) {
	if len(h.Matches) == 0 {
		fmt.Fprintf(o.w, "No finished matches in %s\n", h.RoomCode)
		return
	}
	fmt.Fprintf(o.w, "Matches in %s (newest first):\n", h.RoomCode)
	for _, m := range h.Matches {
		fmt.Fprintf(o.w, "  %s  winner=%s\n", m.FinishedAt.Format("2006-01-02 15:04:05"), m.WinnerID)
		for i, p := range m.FinalScores {
			fmt.Fprintf(o.w, "    %d. %s %d\n", i+1, p.Username, p.TotalScore)
		}
	}
}

func (o *Output) printSession(s response.SessionResponse) {
	fmt.Fprintf(o.w, "Session: %s\n", s.SessionID)
	fmt.Fprintf(o.w, "Username: %s\n", s.Username)
	fmt.Fprintf(o.w, "Connected: %t\n", s.IsConnected)
	fmt.Fprintf(o.w, "Score: %d (%d words)\n", s.Score, s.WordsSubmitted)
	if s.RoomCode != "" {
		fmt.Fprintf(o.w, "Room: %s\n", s.RoomCode)
	}
}

func (o *Output) printBoardResult(b BoardResult) {
	o.printRows(b.Rows)
	fmt.Fprintf(o.w, "Checksum: %s\n", b.Checksum)
	fmt.Fprintf(o.w, "Words (%d): %s\n", len(b.Words), strings.Join(b.Words, " "))
}

func (o *Output) printRows(rows []string) {
	for _, row := range rows {
		fmt.Fprintf(o.w, "  %s\n", strings.Join(strings.Split(row, ""), " "))
	}
}
