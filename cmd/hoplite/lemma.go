package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/hoplite/pkg/lemma"
)

func cmdLemma(args []string) int {
	fs := flag.NewFlagSet("lemma", flag.ExitOnError)
	cfgPath := fs.String("config", "hoplite.yaml", "path to config file")
	compile := fs.String("compile", "", "compile a form<TAB>lemma table to gob")
	output := fs.String("o", "", "output path for -compile (default: input with .gob)")
	check := fs.Bool("check", false, "check that the HTTP lemma backend is reachable")
	stats := fs.Bool("stats", false, "print resolver statistics as JSON")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hoplite lemma [flags] [word or phrase ...]\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	logger, level := newLogger()
	cfg := loadConfig(*cfgPath, logger)
	applyLogLevel(cfg, *verbose, level, logger)

	if *compile != "" {
		t, err := lemma.LoadTable(*compile)
		if err != nil {
			logger.Error("load table", "error", err)
			return 1
		}
		dst := *output
		if dst == "" {
			dst = strings.TrimSuffix(*compile, ".tsv") + ".gob"
		}
		if err := t.SaveGob(dst); err != nil {
			logger.Error("save table", "error", err)
			return 1
		}
		fmt.Printf("%d forms -> %s\n", t.Len(), dst)
		return 0
	}

	if *check {
		h, err := lemma.NewHTTP(cfg.Lemma.URL, cfg.Lemma.Timeout, logger)
		if err != nil {
			logger.Error("lemma backend", "error", err)
			return 1
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		status, err := h.Check(ctx)
		if err != nil {
			logger.Error("lemma backend unreachable", "url", cfg.Lemma.URL, "error", err)
			return 1
		}
		fmt.Printf("%s: %d\n", cfg.Lemma.URL, status)
		if status >= 400 {
			return 1
		}
		return 0
	}

	r, err := openResolver(cfg, logger)
	if err != nil {
		logger.Error("lemma resolver", "error", err)
		return 1
	}
	defer r.Close()

	for _, text := range fs.Args() {
		var parts []string
		for _, tok := range r.Analyze(text) {
			p := tok.Normalized + "=" + tok.Lemma
			switch {
			case tok.Head:
				p = "[" + p + "]"
			case tok.Stop:
				p = "(" + tok.Normalized + ")"
			}
			parts = append(parts, p)
		}
		fmt.Printf("%s\t%s\t%s\n", text, r.BestLemma(text), strings.Join(parts, " "))
	}
	saveCache(r, logger)

	if *stats {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(r.Stats())
	}
	return 0
}
