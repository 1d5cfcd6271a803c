// Package bootstrap wires adapters and use cases from a resolved Config.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	dbsqlite "wikitrans/internal/adapters/db/sqlite"
	expcsv "wikitrans/internal/adapters/exporter/csv"
	expjson "wikitrans/internal/adapters/exporter/jsonmap"
	exportreg "wikitrans/internal/adapters/exporter/registry"
	"wikitrans/internal/adapters/i18n"
	csvparser "wikitrans/internal/adapters/parser/csv"
	jsonparser "wikitrans/internal/adapters/parser/jsonmap"
	parreg "wikitrans/internal/adapters/parser/registry"
	"wikitrans/internal/adapters/remote"
	"wikitrans/internal/adapters/session"
	"wikitrans/internal/adapters/transliterate/inputtools"
	"wikitrans/internal/config"
	"wikitrans/internal/ports"
	exporterusecase "wikitrans/internal/usecase/exporter"
	"wikitrans/internal/usecase/editor"
	"wikitrans/internal/usecase/importer"
	"wikitrans/internal/usecase/syncer"
)

type Services struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *sql.DB
	Events         *Relay
	Session        *session.Session
	Store          *remote.Client
	Journal        *dbsqlite.CommitRepo
	Committer      *syncer.Controller
	Messages       *i18n.Catalog
	Transliterator ports.Transliterator
	Importer       *importer.Service
	Exporter       *exporterusecase.Service
}

// New opens the local database and builds every service. The session is
// restored from the database, and config's session.token wins over it.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Services, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := dbsqlite.Open(ctx, dbsqlite.Options{Path: cfg.DBPath()})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Services{Config: cfg, Logger: log, DB: db, Events: &Relay{}}

	s.Session = session.New(session.Options{
		BaseURL:   cfg.Store.BaseURL,
		LoginPath: cfg.Session.LoginPath,
		Timeout:   cfg.Store.Timeout,
		Settings:  dbsqlite.NewSettingsRepo(db),
		Logger:    log,
	})
	if err := s.Session.Restore(ctx); err != nil {
		log.Warn("restore session", "err", err)
	}
	if cfg.Session.Token != "" {
		if err := s.Session.Init(ctx, cfg.Session.Token); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	s.Store = remote.New(remote.Options{
		BaseURL:            cfg.Store.BaseURL,
		SentencesPath:      cfg.Store.SentencesPath,
		SentencePath:       cfg.Store.SentencePath,
		Timeout:            cfg.Store.Timeout,
		BreakerMaxFailures: cfg.Store.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.Store.BreakerOpenTimeout,
		Logger:             log,
	}, s.Session)

	s.Journal = dbsqlite.NewCommitRepo(db)
	s.Committer = syncer.New(syncer.Deps{
		Store:       s.Store,
		Credentials: s.Session,
		Journal:     s.Journal,
		Events:      s.Events,
		Logger:      log,
		MaxParallel: cfg.Store.MaxParallel,
	})
	s.Messages = i18n.New(cfg.Editor.Locale, log)
	if cfg.Transliteration.Enabled {
		s.Transliterator = inputtools.New(cfg.Transliteration.BaseURL, cfg.Transliteration.Suggestions, dbsqlite.NewCacheRepo(db), log)
	}
	s.Importer = importer.New(parreg.New(csvparser.New(), jsonparser.New()), log)
	s.Exporter = exporterusecase.New(exportreg.New(expcsv.New(), expjson.New()))
	return s, nil
}

// NewEditor returns a view model for one editing session.
func (s *Services) NewEditor() *editor.ViewModel {
	d := editor.Deps{
		Store:       s.Store,
		Committer:   s.Committer,
		Credentials: s.Session,
		Messages:    s.Messages,
		Events:      s.Events,
		Logger:      s.Logger,
		Locale:      s.Config.Editor.Locale,
		ErrorWindow: s.Config.Editor.ErrorWindow,
	}
	if s.Transliterator != nil {
		d.Transliterator = s.Transliterator
	}
	return editor.New(d)
}

func (s *Services) Close() error { return s.DB.Close() }
