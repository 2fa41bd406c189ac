package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/hoplite/pkg/cloze"
	"github.com/hazyhaar/hoplite/pkg/deck"
	"github.com/hazyhaar/hoplite/pkg/lemma"
	"github.com/hazyhaar/hoplite/pkg/lint"
	"github.com/hazyhaar/hoplite/pkg/stopwords"
	"github.com/hazyhaar/hoplite/pkg/tags"
)

type cacheConfig struct {
	Store string `yaml:"store"` // gob | sqlite | none
	Path  string `yaml:"path"`
}

type clozeConfig struct {
	MinConfidence float64        `yaml:"min_confidence"`
	Weights       *cloze.Weights `yaml:"weights"`
}

type config struct {
	ExportPath     string              `yaml:"export_path"`
	ExportEncoding string              `yaml:"export_encoding"`
	InputEncoding  string              `yaml:"input_encoding"`
	ModelFieldMap  string              `yaml:"model_field_map"`
	StopwordsPath  string              `yaml:"stopwords_path"`
	OverridesPath  string              `yaml:"overrides_path"`
	TagMap         string              `yaml:"tag_map"`
	TagSchema      string              `yaml:"tag_schema"`
	AutoTag        bool                `yaml:"auto_tag"`
	Lemma          lemma.BackendConfig `yaml:"lemma"`
	Cache          cacheConfig         `yaml:"cache"`
	Cloze          clozeConfig         `yaml:"cloze"`
	Addr           string              `yaml:"addr"`
	LogLevel       string              `yaml:"log_level"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Commands return an exit code so their deferred closes run first.
	var code int
	switch os.Args[1] {
	case "lint":
		code = cmdLint(os.Args[2:])
	case "serve":
		code = cmdServe(os.Args[2:])
	case "mcp":
		code = cmdMCP(os.Args[2:])
	case "lemma":
		code = cmdLemma(os.Args[2:])
	default:
		usage()
		code = 1
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: hoplite <command> [flags]

Commands:
  lint    Check a candidate CSV against the reference deck and write a report
  serve   Start the HTTP API
  mcp     Serve the MCP tools on stdio
  lemma   Resolve lemmas, compile lemma tables, check the lemma backend
`)
}

// newLogger writes text logs to stderr; the level can be raised or lowered
// after the config is read.
func newLogger() (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), level
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		ExportPath:    "resources/Unified-Greek.txt",
		ModelFieldMap: "resources/model_field_map.yaml",
		OverridesPath: "resources/lemma_overrides.yaml",
		Lemma: lemma.BackendConfig{
			Backend:    "table",
			TablePath:  "resources/lemmas.tsv",
			Timeout:    10 * time.Second,
			HeadPolicy: lemma.HeadVerb,
		},
		Cache: cacheConfig{Store: "gob", Path: "out/lemma_cache.gob"},
		Cloze: clozeConfig{MinConfidence: lint.DefaultMinClozeConfidence},
		Addr:  ":8421",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func applyLogLevel(cfg config, verbose bool, level *slog.LevelVar, logger *slog.Logger) {
	if cfg.LogLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			logger.Warn("bad log_level, keeping info", "log_level", cfg.LogLevel)
		} else {
			level.Set(l)
		}
	}
	if verbose {
		level.Set(slog.LevelDebug)
	}
}

// openResolver builds the lemma resolver: backend, cache store, overrides
// and stop words. The caller closes the resolver.
func openResolver(cfg config, logger *slog.Logger) (*lemma.Resolver, error) {
	stop, err := stopwords.LoadOrDefault(cfg.StopwordsPath)
	if err != nil {
		return nil, err
	}

	backend, err := lemma.Open(cfg.Lemma, logger)
	if err != nil {
		return nil, err
	}

	store, err := lemma.OpenStore(cfg.Cache.Store, cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open lemma cache: %w", err)
	}

	var overrides map[string]string
	if cfg.OverridesPath != "" {
		overrides, err = lemma.LoadOverrides(cfg.OverridesPath)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("no lemma overrides", "path", cfg.OverridesPath)
		} else if err != nil {
			store.Close()
			return nil, err
		}
	}

	r := lemma.New(lemma.Options{
		Backend:     backend,
		Store:       store,
		Overrides:   overrides,
		Stop:        stop,
		HeadPolicy:  cfg.Lemma.HeadPolicy,
		VerbEndings: cfg.Lemma.VerbEndings,
		Logger:      logger,
	})
	st := r.Stats()
	logger.Info("lemma resolver ready", "backend", st.Backend, "cached", st.CacheSize,
		"overrides", st.Overrides, "stopwords", stop.Len())
	return r, nil
}

// buildLinter loads the reference deck and wires every check.
func buildLinter(cfg config, r *lemma.Resolver, logger *slog.Logger) (*lint.Linter, error) {
	fm, err := deck.LoadFieldMap(cfg.ModelFieldMap)
	if err != nil {
		return nil, err
	}
	entries, _, err := deck.LoadExport(cfg.ExportPath, fm, deck.ExportOptions{
		Encoding: cfg.ExportEncoding,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	idx := deck.Build(entries, r)
	st := idx.Stats()
	logger.Info("reference index built", "entries", st.Entries,
		"exact_keys", st.ExactKeys, "lemma_keys", st.LemmaKeys, "gloss_keys", st.GlossKeys)

	var conv *tags.Converter
	if cfg.TagMap != "" {
		if conv, err = tags.LoadConverter(cfg.TagMap); err != nil {
			return nil, err
		}
		logger.Info("tag map loaded", "path", cfg.TagMap)
	}

	var schema *tags.Schema
	if cfg.TagSchema != "" {
		if schema, err = tags.LoadSchema(cfg.TagSchema); err != nil {
			return nil, err
		}
		logger.Info("tag schema loaded", "path", cfg.TagSchema, "rules", len(schema.Rules()))
	}

	rc := cloze.NewRecommender(r.Stopwords())
	if cfg.Cloze.Weights != nil {
		rc.Weights = *cfg.Cloze.Weights
	}

	return lint.New(lint.Options{
		Index:              idx,
		Resolver:           r,
		Stop:               r.Stopwords(),
		Recommender:        rc,
		Converter:          conv,
		Tags:               schema,
		AutoTag:            cfg.AutoTag,
		MinClozeConfidence: cfg.Cloze.MinConfidence,
		Logger:             logger,
	})
}

// saveCache persists new lemma cache entries; failure only warns.
func saveCache(r *lemma.Resolver, logger *slog.Logger) {
	if err := r.Save(); err != nil {
		logger.Warn("lemma cache not saved", "error", err)
		return
	}
	logger.Debug("lemma cache saved", "entries", r.Stats().CacheSize)
}
