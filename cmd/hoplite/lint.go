package main

import (
	"flag"
	"os"
	"strings"

	"github.com/hazyhaar/hoplite/pkg/ingest"
	"github.com/hazyhaar/hoplite/pkg/lint"
)

func cmdLint(args []string) int {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	cfgPath := fs.String("config", "hoplite.yaml", "path to config file")
	input := fs.String("input", "", "candidate CSV (front,back,tags)")
	out := fs.String("out", "out/lint_results.csv", "report path")
	format := fs.String("format", "", "report format: csv or json (default from -out extension)")
	export := fs.String("export", "", "reference deck export (overrides config)")
	autoTag := fs.Bool("auto-tag", false, "apply auto-tag rules from the tag schema")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)

	logger, level := newLogger()
	if *input == "" {
		logger.Error("missing -input")
		fs.Usage()
		return 2
	}

	f := *format
	if f == "" {
		f = "csv"
		if strings.HasSuffix(strings.ToLower(*out), ".json") {
			f = "json"
		}
	}
	if f != "csv" && f != "json" {
		logger.Error("unknown format", "format", f)
		return 2
	}

	cfg := loadConfig(*cfgPath, logger)
	applyLogLevel(cfg, *verbose, level, logger)
	if *export != "" {
		cfg.ExportPath = *export
	}
	if *autoTag {
		cfg.AutoTag = true
	}

	r, err := openResolver(cfg, logger)
	if err != nil {
		logger.Error("lemma resolver", "error", err)
		return 1
	}
	defer r.Close()

	l, err := buildLinter(cfg, r, logger)
	if err != nil {
		logger.Error("build linter", "error", err)
		return 1
	}

	cards, err := ingest.ReadCards(*input, cfg.InputEncoding)
	if err != nil {
		logger.Error("read candidates", "error", err)
		return 1
	}
	logger.Info("candidates loaded", "path", *input, "cards", len(cards))

	rep := l.Run(cards)
	saveCache(r, logger)

	if f == "json" {
		err = ingest.WriteJSON(*out, rep)
	} else {
		err = ingest.WriteCSV(*out, lint.Columns, rep.Rows())
	}
	if err != nil {
		logger.Error("write report", "error", err)
		return 1
	}

	rep.Summary.Write(os.Stdout)
	logger.Info("report written", "path", *out, "run_id", rep.RunID)
	return 0
}
