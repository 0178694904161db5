// Command firecalc runs input sets offline.
//
//	firecalc -in sets.ini -xlsx series.xlsx -pdf reports/
//
// The input is an ini file (one section per set) or an xlsx workbook (one
// row per set). Every set is printed with its outcome and headline values.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"Flashover/internal/calc/batch"
	"Flashover/internal/calc/importer"
	"Flashover/internal/calc/report"
	"Flashover/internal/calc/run"
	"Flashover/internal/config"
)

func main() {
	in := flag.String("in", "", "input sets (.ini or .xlsx)")
	xlsx := flag.String("xlsx", "", "write the full series workbook here")
	pdfDir := flag.String("pdf", "", "write one detail report per set into this directory")
	conf := flag.String("config", "conf/config.ini", "configuration file")
	project := flag.String("project", "", "project name for reports")
	author := flag.String("author", "", "author for reports")
	flag.Parse()

	cfg, err := config.Load(*conf)
	if err != nil {
		log.WithError(err).Fatal("read configuration")
	}
	cfg.SetupLogging()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	items, err := readItems(*in)
	if err != nil {
		log.WithError(err).WithField("file", *in).Fatal("read input sets")
	}

	input := batch.Input{Items: items}
	res, err := batch.Calculate(input, run.Options{MaxIterations: cfg.MaxIterations})
	if err != nil {
		log.WithError(err).Fatal("run")
	}
	entries := report.Entries(input, res)
	printSummary(os.Stdout, entries)

	if *xlsx != "" {
		if err := writeFile(*xlsx, func(w io.Writer) error { return report.Workbook(w, entries) }); err != nil {
			log.WithError(err).Fatal("write workbook")
		}
	}
	if *pdfDir != "" {
		if err := os.MkdirAll(*pdfDir, 0o755); err != nil {
			log.WithError(err).Fatal("create report directory")
		}
		for i, e := range entries {
			meta := report.Meta{Project: *project, Author: *author, Title: e.Name}
			name := filepath.Join(*pdfDir, fmt.Sprintf("%02d-%s.pdf", i+1, fileName(e.Name)))
			if err := writeFile(name, func(w io.Writer) error {
				return report.PDF(w, meta, e, report.DefaultPDFRows)
			}); err != nil {
				log.WithError(err).WithField("set", e.Name).Fatal("write report")
			}
		}
	}
	if res.Computed() < len(entries) {
		os.Exit(1)
	}
}

func readItems(path string) ([]batch.Item, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return importer.ReadWorkbook(f)
	case ".ini":
		return importer.ReadINI(path)
	}
	return nil, fmt.Errorf("unsupported input %q: want .ini or .xlsx", path)
}

func printSummary(w io.Writer, entries []report.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s [%s] %s\n", e.Name, e.Output.Calculator, e.Output.Outcome)
		if !e.Output.Outcome.Computed() {
			fmt.Fprintf(w, "  %s\n", e.Output.Message)
			continue
		}
		for _, p := range e.Output.Summary() {
			fmt.Fprintf(w, "  %-28s %g\n", p.Label, p.Value)
		}
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fileName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "set"
	}
	return s
}
