// Command dateparse extracts a calendar date from label text.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/dateparse"
)

func main() {
	all := flag.Bool("all", false, "Show every candidate, not just the best")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("Usage: dateparse [-all] <text...>")
		os.Exit(1)
	}
	text := strings.Join(flag.Args(), " ")

	parser := dateparse.New(config.Default().DateParser)

	if *all {
		candidates := parser.Candidates(text)
		if len(candidates) == 0 {
			fmt.Println("No date found")
			os.Exit(1)
		}
		for _, c := range candidates {
			fmt.Printf("%s  confidence=%.2f  strategy=%s\n",
				c.Date.Format("2006-01-02"), c.Confidence, c.Strategy)
		}
		return
	}

	date, confidence, ok := parser.Parse(text)
	if !ok {
		fmt.Println("No date found")
		os.Exit(1)
	}
	fmt.Printf("%s (confidence %.2f)\n", date.Format("2006-01-02"), confidence)
}
