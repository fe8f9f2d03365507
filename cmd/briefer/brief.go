package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/briefer/config"
	"github.com/mohammad-safakhou/briefer/internal/agenttask"
	"github.com/mohammad-safakhou/briefer/internal/briefing"
	"github.com/mohammad-safakhou/briefer/internal/enrich"
	"github.com/mohammad-safakhou/briefer/internal/store"
	"github.com/mohammad-safakhou/briefer/internal/telemetry"
	"github.com/mohammad-safakhou/briefer/models"
	"github.com/mohammad-safakhou/briefer/repository/redis_repository"
)

// briefCMD runs one briefing from the terminal and prints it, without the
// HTTP server.
func briefCMD() *cobra.Command {
	var cfgPath string
	var location string
	var topics string
	var useCache bool

	var brief = &cobra.Command{
		Use:   "brief",
		Short: "Run one briefing and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()

			rdb, err := redis_repository.Conn(ctx,
				cfg.Storage.Redis.Host, cfg.Storage.Redis.Port,
				cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, cfg.Storage.Redis.Timeout)
			if err != nil {
				return err
			}
			repo := redis_repository.NewRepository(rdb)

			profile := models.ReaderProfile{Location: location, Topics: topics}
			if topics == "" {
				stored, kind, err := repo.LoadProfile(ctx)
				if err != nil {
					return err
				}
				if kind != models.LoadOk {
					return fmt.Errorf("no stored profile; pass --topics (and optionally --location)")
				}
				profile = stored
			}

			// Run history is optional for one-shot runs.
			var history *store.Store
			if st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN()); err == nil {
				history = st
			} else {
				log.Printf("run history unavailable: %v", err)
			}

			tasks := agenttask.NewClient(agenttask.Config{
				BaseURL:         cfg.Agent.BaseURL,
				CreatePath:      cfg.Agent.CreatePath,
				GetPathTemplate: cfg.Agent.GetPathTemplate,
				APIKey:          cfg.Agent.APIKey,
				AgentProfile:    cfg.Agent.AgentProfile,
				TaskMode:        cfg.Agent.TaskMode,
				HideInTaskList:  cfg.Agent.HideInTaskList,
				PollInterval:    cfg.Agent.PollInterval,
				MaxPoll:         cfg.Agent.MaxPoll,
				RequestTimeout:  cfg.Agent.RequestTimeout,
			}, log.New(log.Writer(), "[TASK] ", log.LstdFlags))

			orch := briefing.New(cfg,
				log.New(log.Writer(), "[ORCH] ", log.LstdFlags),
				telemetry.NewMetrics(), repo, history, tasks, enrich.NewClient(cfg.Images))

			result, err := orch.RunBriefing(ctx, profile, briefing.Options{
				UseCache: useCache,
				Trace:    func(entry string) { fmt.Println("* " + entry) },
			})
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Println(result.Summary)
			for _, item := range result.Items {
				fmt.Printf("\n[%s] %s\n", item.Category, item.Title)
				if item.Summary != "" {
					fmt.Println("  " + item.Summary)
				}
				if item.URL != "" {
					fmt.Println("  " + item.URL)
				}
			}
			return nil
		},
	}
	brief.Flags().StringVar(&location, "location", "", "reader location (default from stored profile)")
	brief.Flags().StringVar(&topics, "topics", "", "comma-separated topics (default from stored profile)")
	brief.Flags().BoolVar(&useCache, "cache", false, "return the cached briefing when present")
	brief.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return brief
}
