// Package generator produces the suggested demo messages shown by the
// producer front end.
package generator

import (
	"fmt"
	"math/rand"
	"time"
)

var (
	adjectives = []string{"Amazing", "Fantastic", "Incredible", "Awesome", "Brilliant", "Superb", "Outstanding", "Excellent"}
	nouns      = []string{"Kubernetes", "Container", "Microservice", "Application", "System", "Platform", "Service", "Deployment"}
	verbs      = []string{"rocks", "rules", "shines", "delivers", "performs", "scales", "works", "succeeds"}
)

// Message returns "<Adjective> <Noun> <verb> at HH:MM:SS". The output
// depends only on r's state and now, so a seeded source is reproducible.
func Message(r *rand.Rand, now time.Time) string {
	return fmt.Sprintf("%s %s %s at %s",
		adjectives[r.Intn(len(adjectives))],
		nouns[r.Intn(len(nouns))],
		verbs[r.Intn(len(verbs))],
		now.Format("15:04:05"),
	)
}
