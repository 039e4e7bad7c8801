// File path: cmd/repobrief/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/repobrief/repobrief/internal/api"
	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/config"
	"github.com/repobrief/repobrief/internal/githost"
	"github.com/repobrief/repobrief/internal/ingest"
	"github.com/repobrief/repobrief/internal/llm"
	"github.com/repobrief/repobrief/internal/store"
	"github.com/repobrief/repobrief/internal/workflow"
)

func main() {
	// The .env file must land in the environment before the first
	// Logger() call: LOG_LEVEL is read once when the singleton is built.
	envErr := godotenv.Load()
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if envErr != nil {
		logger.Warn("repobrief: .env file not loaded", "error", envErr)
	} else {
		logger.Info("repobrief: environment loaded from .env")
	}

	cfg := config.FromEnv()
	addr := flag.String("addr", cfg.Addr, "listen address")
	dbPath := flag.String("db", cfg.DatabasePath, "path to the SQLite database")
	flag.Parse()
	cfg.Addr = *addr
	cfg.DatabasePath = *dbPath

	if err := cfg.Validate(); err != nil {
		logger.Error("repobrief: invalid configuration", "error", err)
		fmt.Println("configuration error:", err)
		os.Exit(1)
	}
	logger.Info("repobrief: startup initiated", "addr", cfg.Addr, "db", cfg.DatabasePath)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("repobrief: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer st.Close()

	provider := llm.NewProvider(cfg.OpenAIKey, cfg.ChatModel, cfg.EmbedModel)
	logger.Info("repobrief: llm provider ready", "provider", provider.Name())
	aiClient := llm.NewClient(provider,
		llm.WithMaxAttempts(cfg.MaxAttempts),
		llm.WithBaseDelay(cfg.RetryBaseDelay))

	github := githost.NewClient(cfg.GitHubToken)
	loader := githost.NewLoader(github)
	manager := workflow.NewManager(ctx)
	puller := ingest.NewCommitPuller(github, aiClient, st,
		ingest.WithPullLimit(cfg.CommitPullLimit),
		ingest.WithPullDelay(cfg.CommitPullDelay))

	server, err := api.NewServer(api.Deps{
		Store:    st,
		GitHost:  github,
		Loader:   loader,
		LLM:      aiClient,
		Workflow: manager,
		Puller:   puller,
	})
	if err != nil {
		logger.Error("repobrief: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("repobrief: server listening", "addr", cfg.Addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", cfg.Addr)
	reachable := cfg.Addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("repobrief: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(cfg.Addr, server); err != nil {
		logger.Error("repobrief: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
	manager.Wait()
}
