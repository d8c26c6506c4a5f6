package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"example.com/mavgate/internal/common"
	"example.com/mavgate/internal/dialect"
	"example.com/mavgate/internal/dialects"
	"example.com/mavgate/internal/report"
	"example.com/mavgate/internal/rules"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "decode":
		decodeCmd(os.Args[2:])
	case "info":
		infoCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`mavctl %s (built %s) <command> [options]

Commands:
  decode  --in <capture> [--dialect <name|file.yaml>] [--out <messages.ndjson>] [--report <report.json>] [--pdf <report.pdf>] [--rules <rulepack.json>] [--metrics] [--progress]
  info    [--dialect <name|file.yaml>]
  report  --report <report.json> --pdf <report.pdf> [--in <capture>]
`, version, buildDate)
}

// resolveDialect maps a selector to a catalog: a builtin name or a path to a
// generator-produced YAML file.
func resolveDialect(selector string) (*dialect.Dialect, error) {
	switch selector {
	case "", "common":
		return dialects.Common(), nil
	case "minimal":
		return dialects.Minimal(), nil
	}
	return dialect.EnsureLoaded(selector)
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "input capture file")
	dialectFlag := fs.String("dialect", "", "dialect name or definition file")
	out := fs.String("out", "", "NDJSON output (default stdout)")
	reportPath := fs.String("report", "", "link report JSON output")
	pdfPath := fs.String("pdf", "", "link report PDF output")
	rulesPath := fs.String("rules", "", "rule pack JSON (default builtin pack)")
	configPath := fs.String("config", "", "mavctl TOML defaults file")
	chunkSize := fs.Int("chunk", 4096, "read chunk size in bytes")
	metricsFlag := fs.Bool("metrics", false, "print decode throughput metrics")
	progressFlag := fs.Bool("progress", false, "display decode progress updates")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		common.Fatalf("load config: %v", err)
	}
	cfg.applyDecodeDefaults(dialectFlag, chunkSize)

	d, err := resolveDialect(*dialectFlag)
	if err != nil {
		common.Fatalf("resolve dialect: %v", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		common.Fatalf("open %s: %v", *in, err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		common.Fatalf("stat %s: %v", *in, err)
	}

	var dst io.Writer = os.Stdout
	if *out != "" {
		outFile, err := os.Create(*out)
		if err != nil {
			common.Fatalf("create %s: %v", *out, err)
		}
		defer outFile.Close()
		dst = outFile
	}
	writer := bufio.NewWriter(dst)
	defer writer.Flush()

	metrics := common.NewMetrics()
	metrics.SetTotalBytes(stat.Size())
	metrics.Start()
	var stopProgress func()
	if *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, time.Second)
	}

	engine := dialect.NewEngine(d)
	var messages []dialect.ParsedMessage
	buf := make([]byte, *chunkSize)
	enc := json.NewEncoder(writer)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			metrics.AddBytes(int64(n))
			for _, msg := range engine.ParseBytes(buf[:n]) {
				metrics.AddMessage(0)
				if !msg.CRCOK {
					metrics.IncCRCFailure()
				}
				messages = append(messages, msg)
				if encErr := enc.Encode(msg); encErr != nil {
					common.Fatalf("write message: %v", encErr)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			common.Fatalf("read %s: %v", *in, err)
		}
	}
	metrics.Stop()
	if stopProgress != nil {
		stopProgress()
	}

	pack := rules.DefaultPack()
	if *rulesPath != "" {
		pack, err = rules.LoadRulePack(*rulesPath)
		if err != nil {
			common.Fatalf("load rule pack: %v", err)
		}
	}
	ruleEngine := rules.NewEngine(pack)
	ruleEngine.RegisterBuiltins()
	ctx := &rules.Context{InputFile: *in, Dialect: d.Name(), Messages: messages}
	if _, err := ruleEngine.Eval(ctx); err != nil {
		common.Fatalf("evaluate rules: %v", err)
	}
	linkReport := ruleEngine.MakeLinkReport()

	if *reportPath != "" {
		if err := report.SaveLinkReportJSON(linkReport, *reportPath); err != nil {
			common.Fatalf("write report: %v", err)
		}
	}
	if *pdfPath != "" {
		digest, _, err := common.Sha256OfFile(*in)
		if err != nil {
			common.Logf("digest %s: %v", *in, err)
			digest = ""
		}
		if err := report.SaveLinkReportPDF(linkReport, digest, *pdfPath); err != nil {
			common.Fatalf("write pdf: %v", err)
		}
	}

	if *metricsFlag {
		snap := metrics.Snapshot()
		fmt.Fprintf(os.Stderr, "decoded %d messages (%d crc failures) from %s in %s (%.2f MiB/s)\n",
			snap.Messages, snap.CRCFailures, common.FormatBytes(snap.Bytes),
			snap.Duration.Round(time.Millisecond),
			snap.ThroughputBytesPerSecond()/(1024*1024))
	}
	if !linkReport.Summary.Pass {
		os.Exit(3)
	}
}

func infoCmd(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	dialectFlag := fs.String("dialect", "", "dialect name or definition file")
	fs.Parse(args)

	d, err := resolveDialect(*dialectFlag)
	if err != nil {
		common.Fatalf("resolve dialect: %v", err)
	}
	fmt.Printf("dialect %s: %d messages\n\n", d.Name(), len(d.IDs()))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPAYLOAD\tCORE\tCRC_EXTRA")
	for _, id := range d.IDs() {
		def, _ := d.MessageByID(id)
		extra, _ := d.CRCExtra(id)
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", def.ID, def.Name, def.PayloadSize(), def.CorePayloadSize(), extra)
	}
	w.Flush()
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	reportPath := fs.String("report", "", "link report JSON input")
	pdfPath := fs.String("pdf", "", "PDF output")
	in := fs.String("in", "", "original capture (embeds its digest)")
	fs.Parse(args)

	if *reportPath == "" || *pdfPath == "" {
		fmt.Println("required: --report and --pdf")
		os.Exit(1)
	}
	data, err := os.ReadFile(*reportPath)
	if err != nil {
		common.Fatalf("read report: %v", err)
	}
	var linkReport rules.LinkReport
	if err := json.Unmarshal(data, &linkReport); err != nil {
		common.Fatalf("parse report: %v", err)
	}
	digest := ""
	if *in != "" {
		digest, _, err = common.Sha256OfFile(*in)
		if err != nil {
			common.Fatalf("digest %s: %v", *in, err)
		}
	}
	if err := report.SaveLinkReportPDF(linkReport, digest, *pdfPath); err != nil {
		common.Fatalf("write pdf: %v", err)
	}
}
