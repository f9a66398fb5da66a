package stoplist

import (
	"context"
	"math"
	"testing"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

func TestManagerBasic(t *testing.T) {
	stops := []string{"the", "a", "and"}
	mgr := NewManager(stops)

	if !mgr.IsStop("the") {
		t.Error("'the' should be a stopword")
	}

	if mgr.IsStop("hello") {
		t.Error("'hello' should not be a stopword")
	}
}

func TestManagerAddRemove(t *testing.T) {
	mgr := NewManager([]string{"the"})

	mgr.Add("test", Reason{HighDF: true})
	if !mgr.IsStop("test") {
		t.Error("'test' should be stopword after adding")
	}

	mgr.Remove("test")
	if mgr.IsStop("test") {
		t.Error("'test' should not be stopword after removing")
	}
}

func TestManagerAllSorted(t *testing.T) {
	mgr := NewManager([]string{"the", "a", "and"})

	all := mgr.All()
	expected := []string{"a", "and", "the"}
	if len(all) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, all)
	}
	for i := range expected {
		if all[i] != expected[i] {
			t.Errorf("All()[%d] = %q, want %q", i, all[i], expected[i])
		}
	}
}

func TestSuggestCandidates(t *testing.T) {
	mgr := NewManager([]string{"and"})

	stats := []Stats{
		{Word: "the", DFPercent: 90, CatEntropy: 0.95},   // candidate
		{Word: "hockey", DFPercent: 20, CatEntropy: 0.1}, // rare and topical
		{Word: "said", DFPercent: 85, CatEntropy: 0.88},  // candidate
		{Word: "god", DFPercent: 70, CatEntropy: 0.2},    // frequent but topical
		{Word: "and", DFPercent: 99, CatEntropy: 0.99},   // already a stopword
	}

	candidates := mgr.SuggestCandidates(stats, Thresholds{})
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %+v", candidates)
	}
	if candidates[0].Word != "the" || candidates[1].Word != "said" {
		t.Errorf("Expected the, said by score, got %+v", candidates)
	}
	if !candidates[0].Reason.HighDF || !candidates[0].Reason.HighEntropy {
		t.Errorf("Unexpected reason %+v", candidates[0].Reason)
	}
	want := (0.90 + 0.95) / 2
	if math.Abs(candidates[0].Score-want) > 1e-12 {
		t.Errorf("Score = %v, want %v", candidates[0].Score, want)
	}
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	dict, err := vocab.NewDictionary([]string{"the", "god", "puck"})
	if err != nil {
		t.Fatalf("NewDictionary: %v", err)
	}
	docs := []vectorize.Labeled{
		{ID: "1", Label: "religion", Vector: []float64{2, 1, 0}},
		{ID: "2", Label: "religion", Vector: []float64{1, 3, 0}},
		{ID: "3", Label: "hockey", Vector: []float64{1, 0, 2}},
		{ID: "4", Label: "hockey", Vector: []float64{4, 0, 1}},
	}

	for _, parts := range []int{1, 3} {
		env := dataset.NewEnv(dataset.WithPartitions(parts))
		stats, err := Collect(ctx, dataset.Parallelize(env, docs), dict)
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if len(stats) != 3 {
			t.Fatalf("Expected 3 stats, got %+v", stats)
		}

		the := stats[0]
		if the.Word != "the" || the.DF != 4 || the.DFPercent != 100 || the.IDF != 0 {
			t.Errorf("Unexpected stats for 'the': %+v", the)
		}
		if math.Abs(the.CatEntropy-1) > 1e-12 {
			t.Errorf("'the' entropy = %v, want 1", the.CatEntropy)
		}

		god := stats[1]
		if god.DF != 2 || god.CatEntropy != 0 {
			t.Errorf("Unexpected stats for 'god': %+v", god)
		}

		candidates := NewManager(nil).SuggestCandidates(stats, DefaultThresholds())
		if len(candidates) != 1 || candidates[0].Word != "the" {
			t.Errorf("Expected only 'the' as candidate, got %+v", candidates)
		}
	}
}
