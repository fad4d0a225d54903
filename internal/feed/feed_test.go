// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package feed

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/exclusion"
	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/models"
	"github.com/tomtom215/reelcast/internal/ranking"
	"github.com/tomtom215/reelcast/internal/storage"
)

func short(id, category string) models.ContentItem {
	return models.ContentItem{ID: id, Kind: models.KindShort, Title: "Short " + id, Category: category}
}

func long(id, category string) models.ContentItem {
	return models.ContentItem{ID: id, Kind: models.KindLong, Title: "Long " + id, Category: category}
}

func staticRanker(ids ...string) ranking.Ranker {
	return ranking.RankerFunc(func(context.Context, []models.ContentItem, *interaction.Snapshot) ranking.Result {
		return ranking.Ranked(ids)
	})
}

func failingRanker(kind ranking.FailureKind) ranking.Ranker {
	return ranking.RankerFunc(func(context.Context, []models.ContentItem, *interaction.Snapshot) ranking.Result {
		return ranking.Failed(kind, errors.New("boom"))
	})
}

func newTestComposer(r ranking.Ranker, seed int64) *Composer {
	return NewComposer(r, rand.New(rand.NewSource(seed)), zerolog.Nop()) //nolint:gosec // test determinism
}

// newSnapshot builds an interaction snapshot via the real store.
func newSnapshot(t *testing.T, build func(ctx context.Context, s *interaction.Store)) *interaction.Snapshot {
	t.Helper()
	s, err := interaction.Load(context.Background(), storage.NewMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("interaction.Load() error = %v", err)
	}
	if build != nil {
		build(context.Background(), s)
	}
	return s.Snapshot()
}

func idsOf(items []models.ContentItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = models.IdentityOf(item)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isPermutation(got, want []string) bool {
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	return equalIDs(g, w)
}

func TestCompose_RankedOrder(t *testing.T) {
	t.Parallel()

	catalog := []models.ContentItem{short("A", "x"), long("B", "x"), short("C", "x")}
	f, outcome := newTestComposer(staticRanker("C", "A"), 1).Compose(context.Background(), Inputs{Catalog: catalog})

	if got := f.IDs(); !equalIDs(got, []string{"C", "A", "B"}) {
		t.Errorf("IDs() = %v, want [C A B]", got)
	}
	if !outcome.Ranked || outcome.Fallback {
		t.Errorf("outcome = %+v, want ranked", outcome)
	}
}

func TestCompose_RankingFailure(t *testing.T) {
	t.Parallel()

	catalog := []models.ContentItem{short("A", "x"), long("B", "x"), short("C", "x")}
	for seed := int64(0); seed < 10; seed++ {
		f, outcome := newTestComposer(failingRanker(ranking.KindTimeout), seed).Compose(context.Background(), Inputs{Catalog: catalog})

		if !isPermutation(f.IDs(), []string{"A", "B", "C"}) {
			t.Fatalf("seed %d: IDs() = %v is not a permutation of [A B C]", seed, f.IDs())
		}
		if outcome.Ranked || !outcome.Fallback || outcome.FallbackReason != ranking.KindTimeout {
			t.Errorf("outcome = %+v, want timeout fallback", outcome)
		}
	}
}

func TestCompose_IgnoresUnknownAndRepeatedIDs(t *testing.T) {
	t.Parallel()

	catalog := []models.ContentItem{short("A", "x"), short("B", "x"), short("C", "x"), short("D", "x")}
	f, _ := newTestComposer(staticRanker("ghost", "C", "C", "A", "ghost", "A"), 1).Compose(context.Background(), Inputs{Catalog: catalog})

	if got := f.IDs(); !equalIDs(got, []string{"C", "A", "B", "D"}) {
		t.Errorf("IDs() = %v, want [C A B D]", got)
	}
}

func TestCompose_Exclusions(t *testing.T) {
	t.Parallel()

	catalog := []models.ContentItem{
		{ID: "A", Title: "a"},
		{ID: "B", AlternateID: "pub-B", Title: "b"},
		{ID: "C", MediaURL: "https://cdn.example/c.mp4", Title: "c"},
		{ID: "D", Title: "d"},
	}
	excl := exclusion.NewSnapshot("A", "pub-B", "https://cdn.example/c.mp4")

	f, _ := newTestComposer(staticRanker(), 1).Compose(context.Background(), Inputs{Catalog: catalog, Exclusions: excl})
	if got := f.IDs(); !equalIDs(got, []string{"D"}) {
		t.Errorf("IDs() = %v, want [D]", got)
	}
}

func TestCompose_ExclusionsHappenBeforeRanking(t *testing.T) {
	t.Parallel()

	var seen []string
	r := ranking.RankerFunc(func(_ context.Context, items []models.ContentItem, _ *interaction.Snapshot) ranking.Result {
		seen = idsOf(items)
		return ranking.Ranked(nil)
	})

	catalog := []models.ContentItem{short("A", "x"), short("B", "x")}
	newTestComposer(r, 1).Compose(context.Background(), Inputs{Catalog: catalog, Exclusions: exclusion.NewSnapshot("B")})

	if !equalIDs(seen, []string{"A"}) {
		t.Errorf("ranker saw %v, want [A]", seen)
	}
}

func TestCompose_DeduplicatesCatalog(t *testing.T) {
	t.Parallel()

	catalog := []models.ContentItem{
		{ID: "A", Title: "first"},
		{Title: "no identity"},
		{ID: "A", Title: "second"},
		{AlternateID: "B", Title: "b"},
		{ID: "B", Title: "b again"},
	}
	f, _ := newTestComposer(staticRanker(), 1).Compose(context.Background(), Inputs{Catalog: catalog})

	if got := f.IDs(); !equalIDs(got, []string{"A", "B"}) {
		t.Fatalf("IDs() = %v, want [A B]", got)
	}
	if item, _ := f.Lookup("A"); item.Title != "first" {
		t.Errorf("first occurrence should win, got %q", item.Title)
	}
}

func TestFeed_LookupBySecondaryIdentifiers(t *testing.T) {
	t.Parallel()

	f := newFeed([]models.ContentItem{
		{ID: "s1", AlternateID: "pub1", MediaURL: "https://cdn.example/s1.mp4"},
		{AlternateID: "s1", MediaURL: "https://cdn.example/other.mp4"},
		{MediaURL: "https://cdn.example/bare.mp4"},
	})

	tests := []struct {
		id   string
		want string
	}{
		{"s1", "s1"},
		{"pub1", "s1"},
		{"https://cdn.example/s1.mp4", "s1"},
		{"https://cdn.example/other.mp4", "s1"},
		{"https://cdn.example/bare.mp4", "https://cdn.example/bare.mp4"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := f.Canonical(tt.id); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}

	// A secondary identifier never shadows another item's primary identity.
	if item, _ := f.Lookup("s1"); item.AlternateID != "pub1" {
		t.Errorf("Lookup(s1) = %+v, want the item whose id is s1", item)
	}
	if got := (*Feed)(nil).Canonical("x"); got != "x" {
		t.Errorf("nil feed Canonical = %q", got)
	}
}

func TestCompose_PermutationProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7)) //nolint:gosec // test determinism
	pool := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	for round := 0; round < 100; round++ {
		var catalog []models.ContentItem
		for _, id := range pool {
			if rng.Intn(3) > 0 {
				catalog = append(catalog, short(id, "x"))
			}
		}

		// Rankings mix known, unknown and repeated ids.
		var order []string
		for i := rng.Intn(12); i > 0; i-- {
			if rng.Intn(4) == 0 {
				order = append(order, "unknown")
			} else {
				order = append(order, pool[rng.Intn(len(pool))])
			}
		}

		f, _ := newTestComposer(staticRanker(order...), int64(round)).Compose(context.Background(), Inputs{Catalog: catalog})
		if !isPermutation(f.IDs(), idsOf(catalog)) {
			t.Fatalf("round %d: feed %v is not a permutation of %v", round, f.IDs(), idsOf(catalog))
		}
	}
}

func TestDerive_Tracks(t *testing.T) {
	t.Parallel()

	f := newFeed([]models.ContentItem{
		long("L1", "x"), short("S1", "x"), long("L2", "x"), short("S2", "x"), long("L3", "x"), short("S3", "x"),
	})
	snap := newSnapshot(t, func(ctx context.Context, s *interaction.Store) {
		_ = s.RecordProgress(ctx, "L1", 1)
		_ = s.Like(ctx, "S2")
		_ = s.Dislike(ctx, "L3")
	})

	layout := Derive(f, snap, 1)
	if got := idsOf(layout.Shorts); !equalIDs(got, []string{"S1", "S3"}) {
		t.Errorf("Shorts = %v, want [S1 S3]", got)
	}
	if got := idsOf(layout.Longs); !equalIDs(got, []string{"L2", "L1"}) {
		t.Errorf("Longs = %v, want [L2 L1]", got)
	}

	shown := Derive(f, snap, 1, HideInteracted(false))
	if got := idsOf(shown.Shorts); !equalIDs(got, []string{"S1", "S2", "S3"}) {
		t.Errorf("Shorts without hiding = %v", got)
	}
	if got := idsOf(shown.Longs); !equalIDs(got, []string{"L2", "L3", "L1"}) {
		t.Errorf("Longs without hiding = %v, want [L2 L3 L1]", got)
	}
}

func TestDerive_ContinueWatching(t *testing.T) {
	t.Parallel()

	f := newFeed([]models.ContentItem{long("A", "x"), long("B", "x"), long("C", "x"), long("D", "x"), long("E", "x")})
	snap := newSnapshot(t, func(ctx context.Context, s *interaction.Store) {
		_ = s.RecordProgress(ctx, "C", 0.5)
		_ = s.RecordProgress(ctx, "A", 0.05) // boundary excluded
		_ = s.RecordProgress(ctx, "gone", 0.5)
		_ = s.RecordProgress(ctx, "B", 0.3)
		_ = s.RecordProgress(ctx, "D", 0.95) // boundary excluded
		_ = s.RecordProgress(ctx, "E", 0.06)
	})

	cw := Derive(f, snap, 1).ContinueWatching
	var got []string
	for _, c := range cw {
		got = append(got, models.IdentityOf(c.Item))
	}
	if !equalIDs(got, []string{"C", "B", "E"}) {
		t.Errorf("ContinueWatching = %v, want [C B E]", got)
	}
	if cw[0].Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", cw[0].Progress)
	}
}

func TestDerive_Affinity(t *testing.T) {
	t.Parallel()

	f := newFeed([]models.ContentItem{
		short("liked", "haunting"), short("h1", "haunting"), short("h2", "haunting"), long("h3", "haunting"),
		short("disliked", "haunting"), short("s1", "slasher"),
	})
	snap := newSnapshot(t, func(ctx context.Context, s *interaction.Store) {
		_ = s.Like(ctx, "liked")
		_ = s.Dislike(ctx, "disliked")
	})

	a := Derive(f, snap, 42).Affinity
	if !isPermutation(idsOf(a), []string{"h1", "h2", "h3"}) {
		t.Fatalf("Affinity = %v, want a permutation of [h1 h2 h3]", idsOf(a))
	}

	// Same seed, same order.
	b := Derive(f, snap, 42).Affinity
	if !equalIDs(idsOf(a), idsOf(b)) {
		t.Errorf("affinity order not stable for a fixed seed: %v vs %v", idsOf(a), idsOf(b))
	}

	if empty := Derive(f, newSnapshot(t, nil), 42).Affinity; len(empty) != 0 {
		t.Errorf("Affinity without likes = %v, want empty", idsOf(empty))
	}
}

func TestDerive_NilSnapshot(t *testing.T) {
	t.Parallel()

	f := newFeed([]models.ContentItem{short("A", "x"), long("B", "x")})
	layout := Derive(f, nil, 1)
	if len(layout.Shorts) != 1 || len(layout.Longs) != 1 || layout.ContinueWatching == nil || layout.Affinity == nil {
		t.Errorf("layout = %+v", layout)
	}
}
