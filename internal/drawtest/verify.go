package drawtest

import (
	"context"
	"fmt"
	"log"
)

// Expected score bands per shape family. Bands are deliberately wide; the
// point is catching a scoring regression, not pinning exact values.
const (
	diskMinScore    = 85.0
	ringMinScore    = 80.0
	ellipseMinScore = 25.0
	ellipseMaxScore = 80.0
	lineMaxScore    = 15.0
)

// verifyResults checks leaderboard ordering and per-shape score bands.
func verifyResults(ctx context.Context, config *Config, drawings []Drawing, scores map[int64]float64, leaderboard []Entry) error {
	log.Println("🔍 Verifying results...")

	if len(scores) == 0 {
		return fmt.Errorf("no accepted submissions to verify")
	}

	// The leaderboard must be sorted best first.
	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].Score > leaderboard[i-1].Score {
			return fmt.Errorf("leaderboard not sorted: rank %d outscores rank %d", i+1, i)
		}
	}

	// Every leaderboard entry for a user we submitted must carry the exact
	// score the API acknowledged.
	mismatches := 0
	for _, entry := range leaderboard {
		if want, ok := scores[entry.UserID]; ok && want != entry.Score {
			log.Printf("⚠️  Score drift for user %d: submitted %.3f, leaderboard %.3f",
				entry.UserID, want, entry.Score)
			mismatches++
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("%d leaderboard entries disagree with acknowledged scores", mismatches)
	}

	// Shape families land in known score bands.
	if err := verifyScoreBands(drawings, scores); err != nil {
		return err
	}

	displayTopEntries(leaderboard, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyScoreBands checks each accepted drawing against its family's band.
func verifyScoreBands(drawings []Drawing, scores map[int64]float64) error {
	outliers := 0
	for _, d := range drawings {
		score, ok := scores[d.UserID]
		if !ok {
			continue
		}
		var bad bool
		switch d.Shape {
		case shapeDisk:
			bad = score < diskMinScore
		case shapeRing:
			bad = score < ringMinScore
		case shapeEllipse:
			bad = score < ellipseMinScore || score > ellipseMaxScore
		case shapeLine:
			bad = score > lineMaxScore
		}
		if bad {
			log.Printf("⚠️  %s drawing by user %d scored %.3f, outside its expected band",
				d.Shape, d.UserID, score)
			outliers++
		}
	}
	if outliers > 0 {
		return fmt.Errorf("%d drawings scored outside their expected bands", outliers)
	}
	log.Println("✅ Score bands verified")
	return nil
}

// displayTopEntries shows the top of the leaderboard.
func displayTopEntries(leaderboard []Entry, verbose bool) {
	topN := 10
	if len(leaderboard) < topN {
		topN = len(leaderboard)
	}

	log.Printf("🏆 Top %d leaderboard entries:", topN)
	for i := 0; i < topN; i++ {
		entry := leaderboard[i]
		log.Printf("   %d. user %d - Score: %.3f", entry.Rank, entry.UserID, entry.Score)
	}

	if verbose && len(leaderboard) > 0 {
		sum := 0.0
		for _, e := range leaderboard {
			sum += e.Score
		}
		log.Printf(`📊 Score statistics:
   Average: %.3f
   Maximum: %.3f
   Minimum: %.3f
`, sum/float64(len(leaderboard)), leaderboard[0].Score, leaderboard[len(leaderboard)-1].Score)
	}
}
