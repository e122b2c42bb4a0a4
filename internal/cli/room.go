package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordcascade/internal/api/response"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Inspect rooms",
	}

	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomHistoryCmd())

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show a room's players, settings and state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomResponse
			if err := client.Get("/api/v1/rooms/"+roomPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <code>",
		Short: "List a room's finished matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/rooms/" + roomPath(args[0]) + "/history"
			if limit > 0 {
				path += fmt.Sprintf("?limit=%d", limit)
			}

			var result response.HistoryResponse
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of matches (server default when 0)")

	return cmd
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the session given by --session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SessionID == "" {
				return errors.New("--session is required")
			}

			var result response.SessionResponse
			if err := client.Get("/api/v1/session", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func roomPath(code string) string {
	return url.PathEscape(strings.ToUpper(strings.TrimSpace(code)))
}
