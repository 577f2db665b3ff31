// seed_assessments.go posts synthetic FACT-G assessments to a running Qualis API.
//
// Usage:
//
//	go run scripts/seed_assessments.go -api http://localhost:8700 -participants 20 -skip 0.1
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/Qualis/internal/api"
	"github.com/MikeSquared-Agency/Qualis/internal/questionnaire"
	"github.com/MikeSquared-Agency/Qualis/internal/scoring"
)

type assessmentRequest struct {
	ParticipantID string          `json:"participant_id"`
	Timepoint     string          `json:"timepoint"`
	Answers       scoring.Answers `json:"answers"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "Qualis API base URL")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	participants := flag.Int("participants", 10, "number of synthetic participants")
	timepoints := flag.String("timepoints", "baseline,week-4,week-12", "comma-separated timepoints")
	skipRate := flag.Float64("skip", 0.05, "probability that an item is left unanswered")
	seed := flag.Int64("seed", 1, "random seed")
	dryRun := flag.Bool("dry-run", false, "print locally computed scores without posting")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	catalogue := questionnaire.FACTG()
	engine := scoring.NewEngine(catalogue)

	var reqs []assessmentRequest
	for p := 1; p <= *participants; p++ {
		for _, tp := range strings.Split(*timepoints, ",") {
			reqs = append(reqs, assessmentRequest{
				ParticipantID: fmt.Sprintf("P-%03d", p),
				Timepoint:     strings.TrimSpace(tp),
				Answers:       randomAnswers(rng, catalogue, *skipRate),
			})
		}
	}

	log.Printf("generated %d assessments", len(reqs))

	if *dryRun {
		for i, r := range reqs {
			scores := engine.ComputeAll(r.Answers)
			fmt.Printf("[%d] %s %s answered=%d total=%d\n", i+1, r.ParticipantID, r.Timepoint, r.Answers.Answered(), scores.Total())
		}
		return
	}

	client := &http.Client{}
	created, skipped := 0, 0
	for _, r := range reqs {
		body, _ := json.Marshal(r)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/assessments", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %s/%s: %v", r.ParticipantID, r.Timepoint, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(api.HeaderClientID, *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %s/%s: %v", r.ParticipantID, r.Timepoint, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			created++
		} else {
			log.Printf("skip %s/%s: status %d", r.ParticipantID, r.Timepoint, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}

func randomAnswers(rng *rand.Rand, c *questionnaire.Catalogue, skipRate float64) scoring.Answers {
	answers := scoring.Answers{}
	c.EachSubscale(func(_ string, items []questionnaire.Item) {
		for _, it := range items {
			if rng.Float64() < skipRate {
				answers[it.Code] = nil
				continue
			}
			v := rng.Intn(scoring.MaxResponse + 1)
			answers[it.Code] = &v
		}
	})
	return answers
}
