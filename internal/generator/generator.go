// Package generator runs the whole pipeline: one consistent catalog
// snapshot, then a pure render of that snapshot to declarations.
package generator

import (
	"context"
	"time"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/dialect"
	"github.com/koustreak/typegen/internal/emit"
	"github.com/koustreak/typegen/internal/logger"
	"github.com/koustreak/typegen/internal/naming"
	"github.com/koustreak/typegen/internal/normalize"
	"github.com/koustreak/typegen/internal/override"
	"github.com/koustreak/typegen/internal/typemap"
)

// Options is the full, immutable policy for one run.
type Options struct {
	Types        typemap.Policy
	Filters      normalize.Filters
	Overrides    override.Overrides
	Naming       naming.Policy
	RuntimeEnums bool
	EnumStyle    naming.EnumStyle
}

// SchemaFilter narrows catalog reads to the default schemas when no include
// pattern could select tables elsewhere.
func (o Options) SchemaFilter() catalog.SchemaFilter {
	if o.Filters.IncludePattern != "" {
		return catalog.SchemaFilter{}
	}
	return catalog.SchemaFilter{Schemas: o.Filters.DefaultSchemas}
}

// Snapshot reads the catalog inside a single read-only transaction. On any
// failure no snapshot is returned.
func Snapshot(ctx context.Context, db database.DB, d dialect.Dialect, filter catalog.SchemaFilter) (*catalog.Snapshot, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	var snap *catalog.Snapshot
	err := db.ReadOnly(ctx, func(q database.Querier) error {
		var err error
		snap, err = catalog.Read(ctx, d.NewReader(q), filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.DebugWith("catalog snapshot read", map[string]interface{}{
		"dialect":  d.Name(),
		"tables":   len(snap.Tables),
		"enums":    len(snap.Enums),
		"domains":  len(snap.Domains),
		"duration": time.Since(start).String(),
	})
	return snap, nil
}

// Render turns a snapshot into declaration text. It does no I/O.
func Render(ctx context.Context, snap *catalog.Snapshot, types typemap.Table, opts Options) (string, error) {
	log := logger.FromContext(ctx)

	model, err := normalize.Normalize(snap, types, opts.Types, opts.Filters)
	if err != nil {
		return "", err
	}

	if unmatched := override.Unmatched(model, opts.Overrides); len(unmatched) > 0 {
		log.DebugWith("ignoring overrides that match no column", map[string]interface{}{
			"paths": unmatched,
		})
	}
	model, err = override.Apply(model, opts.Overrides)
	if err != nil {
		return "", err
	}

	names := naming.Resolve(model, opts.Naming, opts.EnumStyle)
	out := emit.Emit(model, names, emit.Options{Policy: opts.Naming, RuntimeEnums: opts.RuntimeEnums})

	log.DebugWith("declarations rendered", map[string]interface{}{
		"tables": len(model.Tables()),
		"enums":  len(model.Enums()),
		"bytes":  len(out),
	})
	return out, nil
}

// Generate snapshots db and renders it.
func Generate(ctx context.Context, db database.DB, d dialect.Dialect, opts Options) (string, error) {
	snap, err := Snapshot(ctx, db, d, opts.SchemaFilter())
	if err != nil {
		return "", err
	}
	return Render(ctx, snap, d.Types(), opts)
}
