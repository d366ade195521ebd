package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"alphatron/config"
	"alphatron/db"
	"alphatron/services/settings"
)

type Options struct {
	Token    string `long:"token"    description:"Slack verification token to store" required:"true"`
	Document string `long:"document" description:"Settings document id (defaults to SETTINGS_DOCUMENT_ID)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		log.Fatalf("❌ %v", err)
	}

	if err := run(opts); err != nil {
		log.Fatalf("❌ Failed to set token: %v", err)
	}
}

func run(opts Options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	documentID := opts.Document
	if documentID == "" {
		documentID = cfg.SettingsDocID
	}

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx, dbConn, cfg.DatabaseSchema); err != nil {
		return err
	}

	service := settings.NewSettingsService(db.NewPostgresSettingsRepository(dbConn, cfg.DatabaseSchema), documentID)
	if err := service.UpsertToken(ctx, opts.Token); err != nil {
		return err
	}

	log.Printf("✅ Stored verification token for settings document %s", documentID)
	return nil
}
