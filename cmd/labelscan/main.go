// Command labelscan reads lot codes and dates from a label crop image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/imgutil"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/pipeline"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/recognize"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to label crop image (PNG, JPEG or TIFF)")
	configPath := flag.String("config", "", "Optional YAML configuration file")
	preset := flag.String("preset", "default", "Configuration preset: default, fast or quality")
	wantDate := flag.Bool("date", false, "Also extract a calendar date from the text")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("labelscan %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: labelscan -image <path> [-preset default|fast|quality] [-config file.yaml] [-date]")
		os.Exit(1)
	}

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Preset(*preset)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve configuration: %v\n", err)
		os.Exit(1)
	}

	img, err := imgutil.LoadMat(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer img.Close()

	fmt.Printf("Loaded image: %dx%d pixels\n", img.Cols(), img.Rows())

	engine, err := recognize.NewEngine(cfg.Recognizer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start OCR engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	extractor := pipeline.New(cfg, engine)

	text, confidence := extractor.ExtractText(img)
	fmt.Printf("\nExtracted text (confidence %.2f):\n%s\n", confidence, text)

	if *wantDate {
		date, conf, ok := extractor.ParseDate(text)
		if !ok {
			fmt.Println("\nNo date found")
			return
		}
		fmt.Printf("\nDate: %s (confidence %.2f)\n", date.Format("2006-01-02"), conf)
	}
}
