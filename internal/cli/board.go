package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mcoot/wordcascade/internal/dependencies/random"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/board"
	"github.com/mcoot/wordcascade/internal/services/dictionary"
	"github.com/mcoot/wordcascade/internal/services/solver"
	"github.com/mcoot/wordcascade/internal/storage/memory"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Generate and solve boards locally",
		Long: `Board commands run the server's generator and solver in-process.
They need a word list (--words), one word per line.`,
	}

	cmd.AddCommand(newBoardGenerateCmd())
	cmd.AddCommand(newBoardSolveCmd())

	return cmd
}

func newBoardGenerateCmd() *cobra.Command {
	var (
		seed   uint64
		config = board.DefaultConfig()
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a board the way the server does",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rnd random.Random = random.New()
			if cmd.Flags().Changed("seed") {
				rnd = random.NewSeeded(seed)
			}

			finder, err := loadSolver(cmd.Context(), rnd)
			if err != nil {
				return err
			}

			config.CacheSize = 0
			svc := board.New(config, finder, rnd, cliLogger(cmd))
			defer svc.Close()

			b, err := svc.Generate(cmd.Context())
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(boardResult(b, finder))
			if stats := svc.Stats(); stats.Degraded > 0 {
				return fmt.Errorf("no board with %d words after %d attempts", config.MinWords, config.MaxAttempts)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible board")
	cmd.Flags().IntVar(&config.Width, "width", config.Width, "Board width")
	cmd.Flags().IntVar(&config.Height, "height", config.Height, "Board height")
	cmd.Flags().IntVar(&config.MinWords, "min-words", config.MinWords, "Words a board needs to be accepted")
	cmd.Flags().IntVar(&config.MaxAttempts, "max-attempts", config.MaxAttempts, "Boards tried before giving up")

	return cmd
}

func newBoardSolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve <row> [row...]",
		Short: "List every word on a board given as rows of letters",
		Example: `  wcgame board solve CATS OXYZ DEQU GREW
  wcgame board solve "AB.D" EFGH`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := board.FromRows(args)
			if err != nil {
				return err
			}

			finder, err := loadSolver(cmd.Context(), random.New())
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(boardResult(b, finder))
			return nil
		},
	}
}

// loadSolver reads the word list from cfg.WordsPath into a fresh dictionary
func loadSolver(ctx context.Context, rnd random.Random) (*solver.Solver, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dict := dictionary.New(memory.New(), zerolog.Nop())
	if err := dict.LoadFromFile(ctx, cfg.WordsPath); err != nil {
		return nil, fmt.Errorf("load word list: %w", err)
	}
	return solver.New(dict, rnd, solver.DefaultConfig()), nil
}

func boardResult(b *model.GameBoard, finder *solver.Solver) BoardResult {
	words := finder.FindWords(b, 0)
	sort.Strings(words)
	return BoardResult{
		Width:    b.Width,
		Height:   b.Height,
		Rows:     b.Rows(),
		Checksum: board.Checksum(b),
		Words:    words,
	}
}

// cliLogger logs to stderr when --verbose is set
func cliLogger(cmd *cobra.Command) zerolog.Logger {
	if !cfg.Verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
}
