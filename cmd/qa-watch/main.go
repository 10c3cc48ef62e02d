// qa-watch prints a conference's questions and reprints them whenever a new one arrives.
//
//	go run ./cmd/qa-watch -server http://localhost:8080 -conference kx-2025
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"conferenceqa/config"
	"conferenceqa/internal/client"
	"conferenceqa/internal/domain"
	"conferenceqa/internal/realtime"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Base URL of the Q&A server")
	slug := flag.String("conference", "", "Conference slug to watch")
	retry := flag.Duration("retry", client.DefaultRetryDelay, "Delay between reconnect attempts")
	level := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	if *slug == "" {
		fmt.Fprintln(os.Stderr, "-conference is required")
		flag.Usage()
		os.Exit(2)
	}
	logger := config.NewLogger("development", *level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watch(ctx, os.Stdout, *server, *slug, *retry, logger); err != nil {
		fmt.Fprintln(os.Stderr, "qa-watch:", err)
		os.Exit(1)
	}
}

func watch(ctx context.Context, out io.Writer, server, slug string, retry time.Duration, logger *slog.Logger) error {
	questions := client.NewQuestionsClient(server, &http.Client{Timeout: 10 * time.Second})
	source, err := client.NewLiveSource(server, logger, client.WithRetryDelay(retry))
	if err != nil {
		return err
	}

	detail, err := questions.GetConference(ctx, slug)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	render := func(list []*domain.Question) {
		mu.Lock()
		defer mu.Unlock()
		printQuestions(out, detail.Conference, list)
	}

	sub := realtime.NewSubscriber(source, questions, logger, realtime.WithOnChange(render))
	if err := sub.Subscribe(ctx, detail.Conference.TopicKey(), detail.Conference.ID, detail.Questions); err != nil {
		return err
	}
	defer sub.Unsubscribe()

	render(sub.Questions())
	<-ctx.Done()
	return nil
}

func printQuestions(w io.Writer, conf *domain.Conference, list []*domain.Question) {
	fmt.Fprintf(w, "\n== %s (%s) - %d question(s) ==\n", conf.Title, conf.Slug, len(list))
	for i, q := range list {
		fmt.Fprintf(w, "%3d. [%s] %s: %s\n", i+1, q.CreatedAt.Format(time.Kitchen), q.Author, q.Body)
	}
}
