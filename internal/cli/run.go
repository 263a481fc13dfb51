package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/koustreak/typegen/internal/config"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/dialect"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/filestore"
	"github.com/koustreak/typegen/internal/filestore/local"
	"github.com/koustreak/typegen/internal/filestore/minio"
	"github.com/koustreak/typegen/internal/generator"
	"github.com/koustreak/typegen/internal/logger"
	"github.com/koustreak/typegen/internal/verify"
)

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	log := logger.New(&logger.Config{Level: cfg.LogLevel, Format: "console", Output: stderr})
	ctx = log.WithContext(ctx)

	if err := config.LoadEnv(cfg.EnvFile); err != nil {
		return err
	}
	url, err := config.ResolveURL(cfg.URL)
	if err != nil {
		return err
	}
	name, d, err := dialect.Resolve(cfg.DialectName, url)
	if err != nil {
		return err
	}

	var loc filestore.Location
	if cfg.Verify || (!cfg.Print && cfg.OutFile != "") {
		if loc, err = filestore.ParseLocation(cfg.OutFile); err != nil {
			return err
		}
	}

	start := time.Now()
	text, err := generate(ctx, name, d, url, cfg)
	if err != nil {
		return err
	}
	log.Infof("Generated declarations from %s in %s", name, time.Since(start).Round(time.Millisecond))

	switch {
	case cfg.Verify:
		return verifyOutput(ctx, loc, text, stderr)
	case cfg.Print || cfg.OutFile == "":
		_, err := io.WriteString(stdout, text)
		return err
	default:
		return writeOutput(ctx, loc, text)
	}
}

func generate(ctx context.Context, name string, d dialect.Dialect, url string, cfg config.Config) (string, error) {
	dbCfg := database.DefaultConfig(dialect.Driver(name), url)

	ctx, cancel := context.WithTimeout(ctx, dbCfg.QueryTimeout)
	defer cancel()

	db, err := d.Open(ctx, dbCfg)
	if err != nil {
		return "", err
	}
	defer db.Close()

	return generator.Generate(ctx, db, d, cfg.GeneratorOptions(cfg.DefaultSchemas))
}

func writeOutput(ctx context.Context, loc filestore.Location, text string) error {
	store, err := openStore(ctx, loc)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Put(ctx, loc.Key, []byte(text)); err != nil {
		return err
	}
	logger.FromContext(ctx).Infof("Wrote %s", loc)
	return nil
}

// verifyOutput compares text with the stored copy and never writes.
func verifyOutput(ctx context.Context, loc filestore.Location, text string, stderr io.Writer) error {
	store, err := openStore(ctx, loc)
	if err != nil {
		return err
	}
	defer store.Close()

	// Stat first so a missing document (drift) is told apart from one that
	// exists but cannot be read (fatal).
	var prev []byte
	info, err := store.Stat(ctx, loc.Key)
	switch {
	case errs.IsNotFound(err):
		info = nil
	case err != nil:
		return err
	default:
		logger.FromContext(ctx).DebugWith("comparing with stored declarations", map[string]interface{}{
			"location": loc.String(),
			"size":     info.Size,
			"modified": info.LastModified,
		})
		if prev, err = store.Get(ctx, loc.Key); err != nil {
			return err
		}
	}

	ok, err := verify.Verify(text, string(prev), verify.Normalizer)
	if err != nil {
		return err
	}

	if ok {
		color.New(color.FgGreen, color.Bold).Fprintln(stderr, "Generated types are up-to-date!")
		return nil
	}

	warn := color.New(color.FgRed, color.Bold)
	if info == nil {
		warn.Fprintf(stderr, "Generated types are not up-to-date! %s does not exist.\n", loc)
	} else {
		warn.Fprintf(stderr, "Generated types are not up-to-date! Diff of %s (-stored +generated):\n", loc)
		fmt.Fprintln(stderr, verify.Diff(string(prev), text))
	}
	return errs.Mismatch(loc.String())
}

// openStore connects to the backend named by loc.
var openStore = func(ctx context.Context, loc filestore.Location) (filestore.Store, error) {
	if loc.Provider == filestore.ProviderMinIO {
		d, err := minio.New(ctx, filestore.ConfigFromEnv(loc))
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return local.NewOS(), nil
}
