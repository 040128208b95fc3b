package touring_test

import (
	"strings"
	"testing"

	"github.com/strollcast/strollcast/internal/core/domain"
	"github.com/strollcast/strollcast/internal/core/touring"
)

func stop(order int, lat, lon float64, narration string) domain.TourStop {
	return domain.TourStop{
		Order:     order,
		Location:  &domain.GeoPoint{Lat: lat, Lon: lon},
		Narration: narration,
	}
}

func TestCountWords(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"Hello", 1},
		{"This is a test description with eight words", 8},
		{"Hello   world   with   spaces", 4},
		{"  leading and trailing  ", 3},
	}
	for _, c := range cases {
		if got := touring.CountWords(c.text); got != c.want {
			t.Errorf("CountWords(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestEstimateMetrics_Empty(t *testing.T) {
	m := touring.EstimateMetrics(nil)
	if m.DistanceMeters != 0 || m.DurationMinutes != 0 {
		t.Errorf("expected zero metrics for empty tour, got %+v", m)
	}
}

func TestEstimateMetrics_SingleStop(t *testing.T) {
	// One stop: no walking distance, but narration still counts.
	narration := strings.Repeat("word ", 100)
	m := touring.EstimateMetrics([]domain.TourStop{stop(1, 40.7580, -73.9855, narration)})
	if m.DistanceMeters != 0 {
		t.Errorf("expected 0 distance for single stop, got %d", m.DistanceMeters)
	}
	// 100 words / 130 wpm = 0.77 min, rounded up.
	if m.DurationMinutes != 1 {
		t.Errorf("expected 1 minute of narration, got %d", m.DurationMinutes)
	}
}

func TestEstimateMetrics_TwoStops(t *testing.T) {
	// Times Square -> Grand Central, ~1788 m straight line.
	// 1788 * 1.2 = 2145.6 m adjusted; 2145.6 / 73.15 = 29.33 min -> ceil 30.
	m := touring.EstimateMetrics([]domain.TourStop{
		stop(1, 40.7580, -73.9855, ""),
		stop(2, 40.7489, -73.9680, ""),
	})
	if m.DistanceMeters < 2000 || m.DistanceMeters > 2300 {
		t.Errorf("expected adjusted distance in [2000,2300], got %d", m.DistanceMeters)
	}
	if m.DurationMinutes != 30 {
		t.Errorf("expected 30 minutes, got %d", m.DurationMinutes)
	}
}

func TestEstimateMetrics_UnsortedInput(t *testing.T) {
	sorted := touring.EstimateMetrics([]domain.TourStop{
		stop(1, 40.7580, -73.9855, ""),
		stop(2, 40.7489, -73.9680, ""),
		stop(3, 40.7527, -73.9772, ""),
	})
	shuffled := touring.EstimateMetrics([]domain.TourStop{
		stop(3, 40.7527, -73.9772, ""),
		stop(1, 40.7580, -73.9855, ""),
		stop(2, 40.7489, -73.9680, ""),
	})
	if sorted != shuffled {
		t.Errorf("metrics depend on input order: %+v vs %+v", sorted, shuffled)
	}
}

func TestEstimateMetrics_MissingCoordinates(t *testing.T) {
	// The middle stop has no location, so both legs touching it
	// contribute nothing.
	stops := []domain.TourStop{
		stop(1, 40.7580, -73.9855, ""),
		{Order: 2, Narration: "a stop without coordinates"},
		stop(3, 40.7489, -73.9680, ""),
	}
	m := touring.EstimateMetrics(stops)
	if m.DistanceMeters != 0 {
		t.Errorf("expected 0 distance when every pair is missing a side, got %d", m.DistanceMeters)
	}
	if m.DurationMinutes != 1 {
		t.Errorf("narration should still count: got %d minutes", m.DurationMinutes)
	}
}

func TestEstimateMetrics_NarrationMonotonic(t *testing.T) {
	// Holding stops fixed, more narration never shortens the estimate.
	base := []domain.TourStop{
		stop(1, 40.7580, -73.9855, ""),
		stop(2, 40.7489, -73.9680, ""),
	}
	prev := touring.EstimateMetrics(base).DurationMinutes
	for words := 100; words <= 1000; words += 300 {
		withText := []domain.TourStop{
			stop(1, 40.7580, -73.9855, strings.Repeat("word ", words)),
			stop(2, 40.7489, -73.9680, ""),
		}
		cur := touring.EstimateMetrics(withText).DurationMinutes
		if cur < prev {
			t.Errorf("duration decreased from %d to %d at %d words", prev, cur, words)
		}
		prev = cur
	}
}

func TestEstimateMetrics_Deterministic(t *testing.T) {
	stops := []domain.TourStop{
		stop(1, 40.7580, -73.9855, "first stop narration"),
		stop(2, 40.7489, -73.9680, "second stop narration"),
		stop(3, 40.7527, -73.9772, "third stop narration"),
	}
	first := touring.EstimateMetrics(stops)
	second := touring.EstimateMetrics(stops)
	if first != second {
		t.Errorf("recomputation not deterministic: %+v vs %+v", first, second)
	}
}
