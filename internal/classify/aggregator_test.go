package classify

import (
	"errors"
	"math/rand"
	"testing"
)

func TestAggregateEmptyInput(t *testing.T) {
	_, err := Aggregate(nil)
	if !errors.Is(err, ErrNoValidChunks) {
		t.Errorf("Expected ErrNoValidChunks, got %v", err)
	}
}

func TestAggregateSingleChunk(t *testing.T) {
	chunk := ChunkFeatures{MedianF0: 120, SpectralCentroid: 1000, SpectralRolloff: 2500, ZCR: 0.05}

	agg, err := Aggregate([]ChunkFeatures{chunk})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if agg != AggregatedFeatures(chunk) {
		t.Errorf("Expected single-chunk aggregate to equal the chunk, got %+v", agg)
	}
}

func TestAggregateMedianAndMeans(t *testing.T) {
	chunks := []ChunkFeatures{
		{MedianF0: 100, SpectralCentroid: 1000, SpectralRolloff: 2000, ZCR: 0.04},
		{MedianF0: 120, SpectralCentroid: 1200, SpectralRolloff: 2400, ZCR: 0.06},
		{MedianF0: 300, SpectralCentroid: 1400, SpectralRolloff: 2800, ZCR: 0.08},
	}

	agg, err := Aggregate(chunks)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	// Median resists the 300 Hz outlier; means average all values.
	if agg.MedianF0 != 120 {
		t.Errorf("Expected median F0 120, got %v", agg.MedianF0)
	}
	if agg.SpectralCentroid != 1200 {
		t.Errorf("Expected mean centroid 1200, got %v", agg.SpectralCentroid)
	}
	if agg.SpectralRolloff != 2400 {
		t.Errorf("Expected mean rolloff 2400, got %v", agg.SpectralRolloff)
	}
	if agg.ZCR != 0.06 {
		t.Errorf("Expected mean ZCR 0.06, got %v", agg.ZCR)
	}
}

func TestAggregateEvenChunkCountAveragesMiddlePair(t *testing.T) {
	chunks := []ChunkFeatures{
		{MedianF0: 100}, {MedianF0: 110}, {MedianF0: 130}, {MedianF0: 200},
	}

	agg, err := Aggregate(chunks)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if agg.MedianF0 != 120 {
		t.Errorf("Expected median F0 120 for even count, got %v", agg.MedianF0)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	chunks := []ChunkFeatures{
		{MedianF0: 118, SpectralCentroid: 900, SpectralRolloff: 2100, ZCR: 0.041},
		{MedianF0: 124, SpectralCentroid: 1150, SpectralRolloff: 2350, ZCR: 0.058},
		{MedianF0: 131, SpectralCentroid: 1020, SpectralRolloff: 2240, ZCR: 0.049},
		{MedianF0: 109, SpectralCentroid: 980, SpectralRolloff: 2600, ZCR: 0.062},
		{MedianF0: 142, SpectralCentroid: 1300, SpectralRolloff: 1900, ZCR: 0.044},
	}

	want, err := Aggregate(chunks)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]ChunkFeatures, len(chunks))
		copy(shuffled, chunks)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := Aggregate(shuffled)
		if err != nil {
			t.Fatalf("Aggregate failed on permutation %d: %v", i, err)
		}

		if got != want {
			t.Fatalf("Permutation %d changed the aggregate: %+v vs %+v", i, got, want)
		}
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	chunks := []ChunkFeatures{
		{MedianF0: 300}, {MedianF0: 100}, {MedianF0: 200},
	}

	if _, err := Aggregate(chunks); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if chunks[0].MedianF0 != 300 || chunks[1].MedianF0 != 100 || chunks[2].MedianF0 != 200 {
		t.Error("Aggregate reordered the input slice")
	}
}
