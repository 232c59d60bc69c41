// Command leadrelay-classify scores texts against the taxonomy without
// touching any store. Texts come from argv, or line by line from stdin
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"leadrelay/internal/core/classify"
	"leadrelay/internal/core/taxonomy"
)

type secondary struct {
	Service    string `json:"service"`
	Confidence int    `json:"confidence"`
}

type result struct {
	Text            string      `json:"text"`
	Matched         bool        `json:"matched"`
	Service         string      `json:"service,omitempty"`
	Confidence      int         `json:"confidence"`
	Urgency         int         `json:"urgency"`
	Language        string      `json:"language,omitempty"`
	Secondary       []secondary `json:"secondary,omitempty"`
	TaxonomyVersion int         `json:"taxonomy_version"`
}

func must(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	fPack := flag.String("pack", "", "path to a services.json override (default: embedded pack)")
	fPretty := flag.Bool("pretty", false, "indent JSON output")
	flag.Parse()

	var (
		pack *taxonomy.Pack
		err  error
	)
	if *fPack != "" {
		pack, err = taxonomy.LoadFile(*fPack)
	} else {
		pack, err = taxonomy.Load()
	}
	must(err)

	engine := classify.New(pack)

	emit := func(text string) {
		res := engine.Classify(text)
		out := result{
			Text:            text,
			Matched:         res.Matched(),
			Service:         res.Service,
			Confidence:      res.Confidence,
			Urgency:         res.Urgency,
			Language:        string(res.Language),
			TaxonomyVersion: res.TaxonomyVersion,
		}
		for _, c := range res.Secondary {
			out.Secondary = append(out.Secondary, secondary{
				Service:    c.Service,
				Confidence: c.Confidence,
			})
		}

		var raw []byte
		if *fPretty {
			raw, err = json.MarshalIndent(out, "", "  ")
		} else {
			raw, err = json.Marshal(out)
		}
		must(err)
		fmt.Println(string(raw))
	}

	if args := flag.Args(); len(args) > 0 {
		for _, text := range args {
			emit(text)
		}
		return
	}

	// no args, score stdin line by line
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		emit(line)
	}
	must(sc.Err())
}
