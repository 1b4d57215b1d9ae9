package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"supportdesk/internal/gateway/config"
	"supportdesk/internal/knowledge"
	"supportdesk/internal/llm"
	llmclient "supportdesk/internal/llm/client"
	"supportdesk/internal/support"
)

// triage answers support queries from the command line, one per argument or
// one per stdin line when -query is not given.
func main() {
	query := flag.String("query", "", "issue to triage; read from stdin lines when empty")
	kbPath := flag.String("kb", "tech_support_dataset.csv", "knowledge base CSV")
	provider := flag.String("provider", "", "gemini, openai or fake (default from LLM_PROVIDER)")
	model := flag.String("model", "", "model id (default per provider)")
	timeout := flag.Duration("timeout", 30*time.Second, "bound on each generation call")
	retries := flag.Int("format-retries", 0, "re-prompts after an unparseable completion")
	asJSON := flag.Bool("json", false, "print one JSON object per query")
	verbose := flag.Bool("v", false, "log pipeline progress to stderr")
	flag.Parse()

	_ = godotenv.Load()

	jsonMode, err := config.JSONMode(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	cfg := llmclient.Config{
		Provider: llmclient.NormalizeProvider(firstNonEmpty(*provider, os.Getenv("LLM_PROVIDER"))),
		Model:    firstNonEmpty(*model, os.Getenv("LLM_MODEL")),
		BaseURL:  strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		JSONMode: jsonMode,
	}
	cfg.APIKey = config.APIKey(cfg.Provider, os.Getenv)

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatal(err)
		}
	}

	ctx := context.Background()
	kb, from, err := knowledge.Load(ctx, knowledge.SourceConfig{Path: *kbPath})
	if err != nil {
		log.Fatalf("load %s: %v", from, err)
	}
	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	pipeline := support.NewPipeline(llm.Wrap(client, llm.WithLogging(logger), llm.Retry(3, 500*time.Millisecond)), kb, support.Options{
		Policy: support.CallPolicy{Timeout: *timeout, FormatRetries: *retries},
		Logger: logger,
	})

	failed := false
	run := func(q string) {
		ans, err := pipeline.Run(ctx, q)
		if err != nil {
			failed = true
		}
		if *asJSON {
			writeJSON(os.Stdout, q, ans, err)
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error (%s): %v\n", support.KindOf(err), err)
			return
		}
		fmt.Println(ans.Text)
	}

	if strings.TrimSpace(*query) != "" {
		run(*query)
	} else {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				run(line)
			}
		}
		if err := sc.Err(); err != nil {
			log.Fatal(err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, query string, ans support.Answer, err error) {
	out := map[string]any{"query": query}
	if err != nil {
		out["error"] = err.Error()
		out["kind"] = support.KindOf(err)
	} else {
		out["response"] = ans.Text
		out["category"] = ans.Category
		out["issueLabel"] = ans.Classification.IssueLabel
		out["usedFallback"] = ans.Solution.UsedFallback
		out["steps"] = ans.Solution.Steps
	}
	b, _ := json.Marshal(out)
	fmt.Fprintln(w, string(b))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
