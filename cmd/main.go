package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"call-copilot/internal/config"
	"call-copilot/internal/copilot"
	"call-copilot/internal/embedding"
	"call-copilot/internal/llm"
	"call-copilot/internal/store"
	chromemstore "call-copilot/internal/store/chromem"
	"call-copilot/internal/store/postgres"
	"call-copilot/internal/transcript"
	"call-copilot/internal/tui"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	configPath := flag.String("config", configFilePath, "Path to the YAML config file")
	ingestPath := flag.String("ingest", "", "Ingest one transcript file and exit")
	ask := flag.String("ask", "", "Answer one question and exit")
	call := flag.String("call", "", "Restrict -ask to one call ID")
	summarise := flag.String("summarise", "", "Summarise a call ID (or 'last') and exit")
	list := flag.Bool("list", false, "List ingested call IDs and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	c, closeStore, err := buildCopilot(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error assembling copilot")
	}
	defer closeStore()

	ctx := context.Background()

	switch {
	case *ingestPath != "":
		callID, err := c.Ingest(ctx, *ingestPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *ingestPath).Msg("Error ingesting transcript")
		}
		fmt.Println("ingested as", callID)

	case *ask != "":
		resp, err := c.AnswerQuestion(ctx, *ask, *call, 0)
		if err != nil {
			log.Fatal().Err(err).Msg("Error answering question")
		}
		fmt.Println(resp.Answer)
		for i, r := range resp.Sources {
			fmt.Printf("  [Source %d] %s | Chunk #%d | Similarity: %.2f\n",
				i+1, r.Chunk.CallTitle, r.Chunk.ChunkIndex, 1-r.Distance)
		}

	case *summarise != "":
		callID := *summarise
		if callID == "last" {
			callID, err = c.LatestCallID(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("Error finding latest call")
			}
			if callID == "" {
				log.Fatal().Msg("No calls ingested yet")
			}
		}
		resp, err := c.SummariseCall(ctx, callID)
		if err != nil {
			log.Fatal().Err(err).Str("call_id", callID).Msg("Error summarising call")
		}
		fmt.Println(resp.Answer)

	case *list:
		ids, err := c.ListCalls(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Error listing calls")
		}
		for _, id := range ids {
			fmt.Println(id)
		}

	default:
		banner := autoIngest(ctx, c, cfg.DataDir)
		if _, err := tea.NewProgram(tui.New(c, banner), tea.WithAltScreen()).Run(); err != nil {
			log.Fatal().Err(err).Msg("Error running shell")
		}
	}
}

// buildCopilot wires the configured store backend and LLM provider into
// a ready copilot. The returned closer releases backend resources.
func buildCopilot(cfg *config.Config) (*copilot.Copilot, func(), error) {
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		return nil, nil, err
	}

	var index store.Index
	closeStore := func() {}
	switch cfg.Store.Backend {
	case "chromem":
		index, err = chromemstore.New(cfg.Store.Chromem, embedder)
		if err != nil {
			return nil, nil, err
		}
	case "postgres":
		pg, err := postgres.New(cfg.Store.Postgres, embedder)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.InitSchema(context.Background()); err != nil {
			return nil, nil, err
		}
		index = pg
		closeStore = func() {
			if err := pg.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing store")
			}
		}
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	generator, err := llm.New(&cfg.LLM)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	return copilot.New(index, generator, cfg.Segmenter), closeStore, nil
}

// autoIngest loads any transcripts sitting in the data directory before
// the shell starts, so a fresh checkout is usable immediately. A
// missing or empty directory is not an error.
func autoIngest(ctx context.Context, c *copilot.Copilot, dataDir string) string {
	if dataDir == "" {
		return ""
	}
	paths, err := transcript.ListFolder(dataDir)
	if err != nil || len(paths) == 0 {
		return ""
	}
	ingested, failed, err := c.IngestFolder(ctx, dataDir)
	if err != nil {
		log.Error().Err(err).Str("dir", dataDir).Msg("Error ingesting data directory")
		return ""
	}
	if failed > 0 {
		return fmt.Sprintf("Loaded %d transcript(s) from %s (%d failed).", ingested, dataDir, failed)
	}
	return fmt.Sprintf("Loaded %d transcript(s) from %s.", ingested, dataDir)
}
