package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/betagouv/portail-rse-sub001/pkg/actor"
	"github.com/betagouv/portail-rse-sub001/pkg/archive"
	"github.com/betagouv/portail-rse-sub001/pkg/config"
	"github.com/betagouv/portail-rse-sub001/pkg/egapro"
	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
	"github.com/betagouv/portail-rse-sub001/pkg/observability"
	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
	"github.com/betagouv/portail-rse-sub001/pkg/report"
	"github.com/betagouv/portail-rse-sub001/pkg/store"
	"github.com/betagouv/portail-rse-sub001/pkg/util/resiliency"
)

func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// app holds the collaborators of one CLI invocation.
type app struct {
	cfg     *config.Config
	profile *config.Profile
	logger  *slog.Logger

	db           *store.DB
	snapshots    *store.SnapshotStore
	journal      *store.Journal
	bdese        *store.BDESEStore
	oracle       reglementation.FreshnessOracle
	declarations *egapro.Client
	resolver     *actor.Resolver
	archiver     *archive.Archiver
	obs          *observability.Provider

	closers []func() error
}

// newApp loads the configuration and opens the database, the oracle and
// the archive. profilePath overrides PROFILE_PATH when set.
func newApp(ctx context.Context, profilePath string, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: setupLogger(cfg, stderr)}

	if profilePath == "" {
		profilePath = cfg.ProfilePath
	}
	if profilePath != "" {
		if a.profile, err = config.LoadProfile(profilePath); err != nil {
			return nil, err
		}
	}

	if a.db, err = store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.db.Close)
	a.snapshots = store.NewSnapshotStore(a.db)
	a.journal = store.NewJournal(a.db)
	a.bdese = store.NewBDESEStore(a.db)

	client := egapro.NewClient(cfg.EgaproURL,
		egapro.WithRate(rate.Limit(cfg.EgaproRatePerSecond), 5),
		egapro.WithHTTP(resiliency.NewEnhancedClient(
			resiliency.WithTimeout(cfg.EgaproTimeout),
			resiliency.WithBreaker(resiliency.NewCircuitBreaker("egapro", 5, 30*time.Second)),
		)),
	)
	a.oracle = client
	a.declarations = client
	if cfg.RedisAddr != "" {
		cache := egapro.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		a.closers = append(a.closers, cache.Close)
		a.oracle = egapro.NewCachedOracle(client, cache, cfg.OracleCacheTTL)
	}

	if cfg.SessionSecret != "" {
		if a.resolver, err = actor.NewResolver([]byte(cfg.SessionSecret)); err != nil {
			a.close(ctx)
			return nil, err
		}
	}

	blobs, err := archive.New(ctx, archive.Config{
		Type:       archive.StoreType(cfg.ArchiveStorageType),
		DataDir:    cfg.DataDir,
		S3Bucket:   cfg.ArchiveS3Bucket,
		S3Region:   cfg.ArchiveS3Region,
		S3Endpoint: cfg.ArchiveS3Endpoint,
		S3Prefix:   cfg.ArchiveS3Prefix,
		GCSBucket:  cfg.ArchiveGCSBucket,
		GCSPrefix:  cfg.ArchiveGCSPrefix,
	})
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.archiver = archive.NewArchiver(blobs)

	a.obs, err = observability.New(ctx, &observability.Config{
		ServiceName:    "reglementations",
		ServiceVersion: reglementation.RulesetVersion,
		Environment:    "cli",
		OTLPEndpoint:   cfg.OTelEndpoint,
		SampleRate:     1.0,
		BatchTimeout:   time.Second,
		Enabled:        cfg.OTelEnabled,
		Insecure:       true,
	})
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, func() error { return a.obs.Shutdown(ctx) })
	return a, nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.WarnContext(ctx, "close failed", "error", err)
		}
	}
	a.closers = nil
}

// actorFor resolves the viewer of siren. Without a token the caller is an
// attached user; anonymous forces the visitor wording.
func (a *app) actorFor(token, siren string, anonymous bool) (reglementation.Actor, error) {
	switch {
	case anonymous:
		return reglementation.Actor{Kind: reglementation.ActorAnonymous}, nil
	case token == "":
		return reglementation.Actor{}, nil
	case a.resolver == nil:
		return reglementation.Actor{}, errors.New("SESSION_SECRET is required to resolve --token")
	default:
		return a.resolver.Resolve(token, siren)
	}
}

func (a *app) env(today time.Time, who reglementation.Actor) reglementation.Env {
	base := a.cfg.PortailBaseURL
	if a.profile != nil && a.profile.BaseURL != "" {
		base = a.profile.BaseURL
	}
	return reglementation.Env{
		Today:  today,
		Actor:  who,
		Oracle: a.oracle,
		BDESE:  a.bdese,
		Links:  reglementation.Links{BaseURL: base},
		Logger: a.logger.With("component", "reglementation"),
	}
}

// today returns the evaluation date: the flag, then the profile, then the clock.
func (a *app) today(flagValue string) (time.Time, error) {
	if flagValue != "" {
		t, err := time.Parse(time.DateOnly, flagValue)
		if err != nil {
			return time.Time{}, fmt.Errorf("--today: %w", err)
		}
		return t, nil
	}
	return a.profile.TodayOr(time.Now()), nil
}

type evalOptions struct {
	save    bool
	archive bool
}

type outcome struct {
	Report      *report.Report `json:"report"`
	ArchiveHash string         `json:"archive_hash,omitempty"`
}

// evaluate builds the report of c and, on request, journals and archives it.
func (a *app) evaluate(ctx context.Context, c *entreprise.Caracteristiques, env reglementation.Env, opts evalOptions) (out outcome, err error) {
	ctx, finish := a.obs.TrackOperation(ctx, "evaluate", observability.Snapshot(c.Entreprise.Siren, c.Annee)...)
	defer func() { finish(err) }()

	r, err := report.Build(ctx, c, env, a.profile.Filter(), time.Now())
	if err != nil {
		return outcome{}, err
	}
	a.obs.RecordResults(ctx, r.Results)
	out.Report = r

	if opts.save {
		if err := a.snapshots.Save(ctx, c); err != nil {
			return outcome{}, err
		}
		err := a.journal.Record(ctx, store.Evaluation{
			ReportID:    r.ID,
			Siren:       r.Siren,
			Annee:       r.Annee,
			Ruleset:     r.Ruleset,
			Digest:      r.Digest,
			EvaluatedAt: r.GeneratedAt,
			Results:     r.Results,
		})
		if err != nil {
			return outcome{}, err
		}
	}
	if opts.archive {
		if out.ArchiveHash, err = a.archiver.Save(ctx, r); err != nil {
			return outcome{}, err
		}
	}
	a.logger.InfoContext(ctx, "snapshot evaluated",
		"siren", r.Siren, "annee", r.Annee, "report_id", r.ID, "digest", r.Digest)
	return out, nil
}
