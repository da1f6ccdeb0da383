package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tutor-client/cmd"
	"tutor-client/internal/chat"
	"tutor-client/internal/config"
	"tutor-client/internal/database"
)

func main() {
	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	if !cfg.Enabled {
		log.Println("chat is disabled by configuration (CHAT_WIDGET_ENABLED=false)")
		return
	}

	db, err := database.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("error opening local store: %v", err)
	}

	client := chat.New(cfg, database.NewStore(db))
	defer client.CancelAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println(cfg.Greeting)
	fmt.Println(`Type a question, or /retry, /history, /clear, /quit.`)

	if msgs := client.Messages(); len(msgs) > 0 {
		fmt.Printf("(restored %d messages from session %s)\n", len(msgs), client.SessionID())
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/clear":
			client.ClearHistory()
			fmt.Printf("history cleared, new session %s\n", client.SessionID())
			continue
		case "/history":
			printHistory(cfg, client.Messages())
			continue
		case "/retry":
			answer, err := client.RetryLast(ctx)
			render(cfg, answer, err)
			continue
		}

		answer, err := client.Send(ctx, line)
		render(cfg, answer, err)
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("error reading input: %v", err)
	}
}

func render(cfg *config.Config, answer *chat.Message, err error) {
	if err != nil {
		if cerr, ok := chat.AsError(err); ok {
			fmt.Printf("error: %s", cerr.Message)
			if cerr.CanRetry {
				fmt.Print(" (/retry to try again)")
			}
			fmt.Println()
		} else if !errors.Is(err, chat.ErrEmptyQuestion) {
			fmt.Printf("error: %v\n", err)
		}
		return
	}
	if answer == nil {
		return
	}

	fmt.Println(answer.Content)

	if cfg.ShowConfidence && answer.Confidence != nil {
		fmt.Printf("  confidence: %.0f%%\n", *answer.Confidence*100)
	}
	if cfg.ShowSources {
		for _, src := range answer.Sources {
			fmt.Printf("  source: %s", src.DisplayTitle())
			if src.Section != "" {
				fmt.Printf(" (%s)", src.Section)
			}
			fmt.Println()
		}
	}
	if len(answer.FollowUpSuggestions) > 0 {
		fmt.Println("  you could also ask:")
		for _, s := range answer.FollowUpSuggestions {
			fmt.Printf("    - %s\n", s)
		}
	}
}

func printHistory(cfg *config.Config, msgs []chat.Message) {
	if len(msgs) == 0 {
		fmt.Println("(no messages yet)")
		return
	}
	for _, msg := range msgs {
		prefix := "you"
		if msg.Role == chat.RoleAnswer {
			prefix = "tutor"
		}
		if cfg.ShowTimestamps {
			fmt.Printf("[%s] ", msg.Timestamp.Local().Format("15:04:05"))
		}
		fmt.Printf("%s: %s\n", prefix, msg.Content)
	}
}
