// Package classify implements service classification over normalized chat text
package classify

import (
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"leadrelay/internal/core/langhint"
	"leadrelay/internal/core/normalize"
	"leadrelay/internal/core/taxonomy"
)

// Candidate is one scored service
type Candidate struct {
	Service    string
	Confidence int
}

// Result is the outcome of classifying one message.
// Identical text and taxonomy always produce an identical Result
type Result struct {
	// Service is the winning service name, empty when nothing scored
	Service string
	// Confidence is 0..100 for the winning service
	Confidence int
	// Urgency is 1..5, higher means the sender wants it sooner
	Urgency int
	// Secondary lists the remaining scored services, best first
	Secondary []Candidate
	// Language is a coarse script hint for the raw text
	Language langhint.Hint
	// TaxonomyVersion records which pack produced the scores
	TaxonomyVersion int
}

// Matched reports whether any service cleared zero confidence
func (r Result) Matched() bool { return r.Service != "" }

// Engine scores messages against the current taxonomy pack.
// Swap installs a new pack atomically; in-flight Classify calls keep the
// pack they started with
type Engine struct {
	cur  atomic.Pointer[compiled]
	norm *normalize.Normalizer
}

// compiled binds one immutable pack to its pattern automaton
type compiled struct {
	pack *taxonomy.Pack
	ac   *automaton
	refs []patternRef
}

// patternRef resolves an automaton pattern ID back to its owner.
// service < 0 marks a negative pattern
type patternRef struct {
	service int
	weight  float64
}

// New constructs an Engine over p
func New(p *taxonomy.Pack) *Engine {
	e := &Engine{norm: normalize.New()}
	e.cur.Store(compile(p))
	return e
}

// Swap replaces the pack for all future Classify calls
func (e *Engine) Swap(p *taxonomy.Pack) { e.cur.Store(compile(p)) }

// Pack returns the pack currently behind the engine
func (e *Engine) Pack() *taxonomy.Pack { return e.cur.Load().pack }

func compile(p *taxonomy.Pack) *compiled {
	c := &compiled{pack: p, ac: newAutomaton()}
	add := func(service int, pats []taxonomy.Pattern) {
		for _, pat := range pats {
			c.ac.AddPattern([]byte(pat.Text), len(c.refs))
			c.refs = append(c.refs, patternRef{service: service, weight: pat.Weight})
		}
	}
	for i, svc := range p.Services {
		add(i, svc.Patterns)
	}
	add(-1, p.Negative)
	c.ac.Build()
	return c
}

// Classify normalizes text and scores it against the current pack
func (e *Engine) Classify(text string) Result {
	c := e.cur.Load()
	nt := e.norm.Normalize(text)

	res := Result{
		Language:        langhint.Detect(text),
		Urgency:         urgency(c.pack, nt),
		TaxonomyVersion: c.pack.Version,
	}
	if nt == "" {
		return res
	}

	// Every pattern occurrence votes with its weight. The automaton reports
	// overlapping and repeated occurrences and each one counts on its own
	raw := make([]float64, len(c.pack.Services))
	var negative float64
	c.ac.FindAll([]byte(nt), func(_ int, id int) bool {
		ref := c.refs[id]
		if ref.service < 0 {
			negative += ref.weight
		} else {
			raw[ref.service] += ref.weight
		}
		return true
	})

	// Negative matches subtract from every raw score before the clamp
	cands := make([]Candidate, 0, 4)
	for i, score := range raw {
		if score <= 0 {
			continue
		}
		conf := clampConfidence((score - negative) * c.pack.Scale)
		if conf <= 0 {
			continue
		}
		cands = append(cands, Candidate{Service: c.pack.Services[i].Name, Confidence: conf})
	}
	if len(cands) == 0 {
		return res
	}

	// Best confidence first; equal scores go to the lexicographically
	// smaller name. Names are unique so the order is total
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Confidence != cands[j].Confidence {
			return cands[i].Confidence > cands[j].Confidence
		}
		return cands[i].Service < cands[j].Service
	})

	res.Service = cands[0].Service
	res.Confidence = cands[0].Confidence
	if len(cands) > 1 {
		res.Secondary = cands[1:]
	}
	return res
}

func clampConfidence(v float64) int {
	if v <= 0 {
		return 0
	}
	n := int(math.Round(v))
	if n > 100 {
		return 100
	}
	return n
}

// urgency is a small weighted sum clamped to 1..5: a neutral base of 2,
// shifted to the highest marker level present in the text, plus one for
// heavy exclamation use. Marker sets live in the pack so reloads retune it
func urgency(p *taxonomy.Pack, nt string) int {
	lvl := 0
	for l := 5; l >= 1 && lvl == 0; l-- {
		for _, m := range p.Urgency[l] {
			if strings.Contains(nt, m) {
				lvl = l
				break
			}
		}
	}
	if lvl == 0 {
		lvl = 2
	}
	if strings.Count(nt, "!") >= 3 {
		lvl++
	}
	if lvl > 5 {
		lvl = 5
	}
	if lvl < 1 {
		lvl = 1
	}
	return lvl
}
