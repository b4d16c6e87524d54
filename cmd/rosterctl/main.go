// Command rosterctl imports a roster document into the database and
// notifies running services so they refresh their snapshots.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mlagarde/colloscope/internal/analytics"
	"github.com/mlagarde/colloscope/internal/lookup/index"
	"github.com/mlagarde/colloscope/internal/lookup/resolver"
	"github.com/mlagarde/colloscope/internal/roster"
	"github.com/mlagarde/colloscope/internal/roster/store"
	"github.com/mlagarde/colloscope/pkg/config"
	"github.com/mlagarde/colloscope/pkg/kafka"
	"github.com/mlagarde/colloscope/pkg/logger"
	"github.com/mlagarde/colloscope/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	filePath := flag.String("file", "", "path to the roster JSON document to import")
	query := flag.String("query", "", "resolve a query against the roster instead of importing it")
	noPublish := flag.Bool("no-publish", false, "skip the roster-updated Kafka notification")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, "text")

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: rosterctl -file roster.json [-query \"name\"] [-no-publish]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *filePath, err)
		os.Exit(1)
	}
	var r roster.Roster
	if err := json.Unmarshal(data, &r); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", *filePath, err)
		os.Exit(1)
	}

	// Dry-run resolution against the local document, no services needed.
	if *query != "" {
		idx := index.Build(&r)
		candidate, ok := resolver.Resolve(idx, *query)
		if !ok {
			fmt.Printf("no unique match for %q\n", *query)
			os.Exit(1)
		}
		name, _ := roster.NameOf(&r, candidate)
		fmt.Printf("matched %q: group=%d student=%d entity_id=%d name=%q\n",
			*query, candidate.Group, candidate.Student, candidate.EntityID(r.ID), name)
		return
	}

	if err := roster.Validate(&r); err != nil {
		fmt.Fprintf(os.Stderr, "invalid roster document: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st := store.New(db)
	if err := st.Save(ctx, &r); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save roster: %v\n", err)
		os.Exit(1)
	}

	students := 0
	for _, g := range r.Groups {
		students += len(g.Students)
	}
	slog.Info("roster imported", "roster_id", r.ID, "name", r.Name, "groups", len(r.Groups), "students", students)

	if *noPublish {
		return
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RosterUpdated)
	defer producer.Close()
	err = producer.Publish(ctx, kafka.Event{
		Key: fmt.Sprintf("roster-%d", r.ID),
		Value: analytics.RosterEvent{
			Type:      analytics.EventRosterImport,
			RosterID:  r.ID,
			Groups:    len(r.Groups),
			Students:  students,
			Timestamp: time.Now(),
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "roster saved but notification failed: %v\n", err)
		os.Exit(1)
	}
	slog.Info("roster update published", "topic", cfg.Kafka.Topics.RosterUpdated)
}
