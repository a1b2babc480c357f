package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/catalog"
	"github.com/cory-johannsen/pogodata/internal/export"
	"github.com/cory-johannsen/pogodata/internal/icon"
	"github.com/cory-johannsen/pogodata/internal/query"
	"github.com/cory-johannsen/pogodata/internal/source"
)

func (e *env) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func runBuild(ctx context.Context, e *env, args []string) error {
	fs := e.flags("build")
	out := fs.String("out", "", "write the encoded snapshot to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	snap, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	if *out != "" {
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "snapshot\t%s\n", snap.ID)
	fmt.Fprintf(tw, "digest\t%s\n", source.Digest(data))
	for _, kind := range export.Kinds {
		fmt.Fprintf(tw, "%s\t%d\n", kind, snap.Counts()[kind])
	}
	return tw.Flush()
}

func runQuery(ctx context.Context, e *env, args []string) error {
	fs := e.flags("query")
	kind := fs.String("kind", "creatures", "entity kind: "+strings.Join(export.Kinds, ", "))
	where := fs.String("where", "{}", "JSON object of attribute constraints")
	if err := fs.Parse(args); err != nil {
		return err
	}
	w, err := parseWhere(*where)
	if err != nil {
		return err
	}
	if err := export.ValidateWhere(*kind, w); err != nil {
		return err
	}
	snap, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := export.New(e.icons(snap), e.logger).Marshal(snap, *kind, w)
	if err != nil {
		return err
	}
	_, err = e.out.Write(data)
	return err
}

// parseWhere decodes a constraint object. Numbers stay json.Number so large
// integers survive decoding exactly.
func parseWhere(raw string) (query.Where, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var w query.Where
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("parsing -where: %w", err)
	}
	return w, nil
}

func runSuggest(ctx context.Context, e *env, args []string) error {
	fs := e.flags("suggest")
	limit := fs.Int("limit", 5, "maximum suggestions; 0 prints all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.Join(fs.Args(), " ")
	if name == "" {
		return errors.New("a name is required")
	}
	snap, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	for _, s := range snap.Suggest(name, *limit) {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\n", s.Score, s.Creature.Name, s.Creature.Template)
	}
	return tw.Flush()
}

func runExport(ctx context.Context, e *env, args []string) error {
	fs := e.flags("export")
	out := fs.String("out", "export", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	snap, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	written, err := export.New(e.icons(snap), e.logger).Write(snap, *out)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintln(e.out, path)
	}
	return nil
}

func runEnum(ctx context.Context, e *env, args []string) error {
	fs := e.flags("enum")
	message := fs.String("message", "", "restrict the search to this message block")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("exactly one enum name is required")
	}
	snap, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	enum, err := snap.Enum(fs.Arg(0), *message)
	if err != nil {
		return err
	}
	if enum.Empty() {
		return fmt.Errorf("enum %q not found", fs.Arg(0))
	}
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	for _, m := range enum.Members() {
		fmt.Fprintf(tw, "%d\t%s\n", m.Value, m.Name)
	}
	return tw.Flush()
}

func runLocale(ctx context.Context, e *env, args []string) error {
	fs := e.flags("locale")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one key is required")
	}
	snap, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	for _, key := range fs.Args() {
		fmt.Fprintf(tw, "%s\t%s\n", key, snap.Locale(key))
	}
	return tw.Flush()
}

// icons builds the resolver for the configured icon set over the snapshot's
// manifest. A set that cannot be resolved omits icon URLs.
func (e *env) icons(snap *catalog.Snapshot) *icon.Resolver {
	set, err := icon.Lookup(e.cfg.Catalog.IconSet)
	if err != nil {
		e.logger.Warn("icon URLs disabled", zap.Error(err))
		return nil
	}
	manifest, err := icon.ParseManifest(snap.Bundle().IconManifest)
	if err != nil {
		e.logger.Warn("ignoring icon manifest", zap.Error(err))
		manifest = nil
	}
	return icon.NewResolver(set, manifest)
}
