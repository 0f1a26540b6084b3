package engine

import (
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopwave-catalog/catalog"
)

func rec(key, price int64) catalog.Record {
	return catalog.Record{Key: key, PriceCents: price}
}

func keys(records []catalog.Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.Key)
	}
	return out
}

func prices(records []catalog.Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.PriceCents)
	}
	return out
}

func scenario() []catalog.Record {
	return []catalog.Record{rec(1, 10), rec(2, 5), rec(3, 5), rec(4, 20)}
}

func randomRecords(rng *rand.Rand, n int) []catalog.Record {
	out := make([]catalog.Record, n)
	for i := range out {
		out[i] = rec(int64(i+1), int64(rng.Intn(20)))
	}
	return out
}

func TestScenarioSortTopKMedian(t *testing.T) {
	records := scenario()

	assert.Equal(t, []int64{2, 3, 1, 4}, keys(SortByPrice(records, true)))

	top := TopKCheapest(records, 2)
	assert.ElementsMatch(t, []int64{5, 5}, prices(top))
	assert.ElementsMatch(t, []int64{2, 3}, keys(top))

	median, ok := MedianByPrice(records)
	require.True(t, ok)
	assert.Equal(t, int64(10), median.PriceCents)
	assert.Equal(t, int64(1), median.Key)

	assert.Equal(t, []int64{1, 2, 3, 4}, keys(records), "inputs are not reordered")
}

func TestSortByPriceDescendingIsStable(t *testing.T) {
	assert.Equal(t, []int64{4, 1, 2, 3}, keys(SortByPrice(scenario(), false)))
}

func TestSortByPriceProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		records := randomRecords(rng, rng.Intn(40))

		asc := SortByPrice(records, true)
		desc := SortByPrice(records, false)
		require.Len(t, asc, len(records))
		require.Len(t, desc, len(records))

		assert.True(t, IsSortedByPrice(asc))
		for i := 1; i < len(desc); i++ {
			assert.GreaterOrEqual(t, desc[i-1].PriceCents, desc[i].PriceCents)
		}

		// Keys were assigned in input order, so equal prices must keep ascending keys.
		for i := 1; i < len(asc); i++ {
			if asc[i-1].PriceCents == asc[i].PriceCents {
				assert.Less(t, asc[i-1].Key, asc[i].Key)
			}
		}
		for i := 1; i < len(desc); i++ {
			if desc[i-1].PriceCents == desc[i].PriceCents {
				assert.Less(t, desc[i-1].Key, desc[i].Key)
			}
		}

		want := slices.Clone(records)
		sort.SliceStable(want, func(i, j int) bool { return want[i].PriceCents < want[j].PriceCents })
		assert.Equal(t, keys(want), keys(asc))
	}
}

func TestSortEmptyAndSingleton(t *testing.T) {
	assert.Empty(t, SortByPrice(nil, true))
	assert.Empty(t, SortByRating([]catalog.Record{}))
	assert.Equal(t, []int64{9}, keys(SortByPrice([]catalog.Record{rec(9, 1)}, false)))
}

func TestSortByRating(t *testing.T) {
	four, five, zero := 4.0, 5.0, 0.0
	records := []catalog.Record{
		{Key: 1, Rating: &four},
		{Key: 2},
		{Key: 3, Rating: &five},
		{Key: 4, Rating: &zero},
		{Key: 5, Rating: &four},
	}

	got := SortByRating(records)
	assert.Equal(t, []int64{3, 1, 5, 2, 4}, keys(got), "absent rating ranks as 0 and ties keep input order")
	assert.Nil(t, got[3].Rating, "absent rating is not rewritten")
}

func TestFilterByPriceRange(t *testing.T) {
	sorted := SortByPrice([]catalog.Record{rec(1, 100), rec(2, 250), rec(3, 250), rec(4, 400), rec(5, 999)}, true)
	require.True(t, IsSortedByPrice(sorted))

	assert.Equal(t, []int64{2, 3, 4}, keys(FilterByPriceRange(sorted, 250, 400)))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, keys(FilterByPriceRange(sorted, 0, 1000)))
	assert.Equal(t, []int64{2, 3}, keys(FilterByPriceRange(sorted, 101, 399)))
	assert.Empty(t, FilterByPriceRange(sorted, 500, 900))
	assert.Empty(t, FilterByPriceRange(sorted, 1000, 2000))
	assert.Empty(t, FilterByPriceRange(sorted, 400, 250), "inverted bounds")
	assert.Empty(t, FilterByPriceRange(nil, 0, 10))
}

func TestFilterByPriceRangeMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 100; round++ {
		sorted := SortByPrice(randomRecords(rng, rng.Intn(30)), true)
		lo, hi := int64(rng.Intn(22)-1), int64(rng.Intn(22)-1)

		var want []int64
		for _, r := range sorted {
			if r.PriceCents >= lo && r.PriceCents <= hi {
				want = append(want, r.Key)
			}
		}
		got := keys(FilterByPriceRange(sorted, lo, hi))
		if len(want) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, want, got, "range [%d,%d]", lo, hi)
	}
}

func TestFilterByPriceRangeDoesNotClobberInput(t *testing.T) {
	sorted := []catalog.Record{rec(1, 1), rec(2, 2), rec(3, 3)}
	sub := FilterByPriceRange(sorted, 1, 2)
	_ = append(sub, rec(99, 99))

	assert.Equal(t, int64(3), sorted[2].Key)
}

func TestFilterByPriceRangeUnsortedInputIsUnreliable(t *testing.T) {
	unsorted := []catalog.Record{rec(1, 50), rec(2, 5), rec(3, 20)}
	require.False(t, IsSortedByPrice(unsorted), "precondition violated on purpose")

	got := FilterByPriceRange(unsorted, 5, 20)
	assert.NotEqual(t, []int64{2, 3}, keys(got), "the binary search cannot find the matches in unsorted input")
}

func TestTopKCheapest(t *testing.T) {
	records := scenario()

	assert.Empty(t, TopKCheapest(records, 0))
	assert.Empty(t, TopKCheapest(nil, 3))
	assert.Len(t, TopKCheapest(records, 10), 4, "k larger than n returns n")

	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 50; round++ {
		in := randomRecords(rng, rng.Intn(25))
		k := rng.Intn(30)

		got := TopKCheapest(in, k)
		want := prices(SortByPrice(in, true))
		want = want[:min(k, len(want))]
		assert.ElementsMatch(t, want, prices(got))
		assert.True(t, IsSortedByPrice(got), "extraction order is cheapest first")
	}
}

func TestMedianByPrice(t *testing.T) {
	_, ok := MedianByPrice(nil)
	assert.False(t, ok)

	only, ok := MedianByPrice([]catalog.Record{rec(1, 42)})
	require.True(t, ok)
	assert.Equal(t, int64(42), only.PriceCents)

	even, ok := MedianByPrice([]catalog.Record{rec(1, 4), rec(2, 1), rec(3, 3), rec(4, 2)})
	require.True(t, ok)
	assert.Equal(t, int64(3), even.PriceCents, "index n/2 of [1 2 3 4]")
}

func TestMedianByPriceIsOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	base := randomRecords(rng, 31)
	want := SortByPrice(base, true)[len(base)/2].PriceCents

	for round := 0; round < 50; round++ {
		perm := slices.Clone(base)
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

		got, ok := MedianByPrice(perm)
		require.True(t, ok)
		assert.Equal(t, want, got.PriceCents)
	}

	// Sorted and reverse-sorted inputs are the quadratic case; the answer is the same.
	sorted := SortByPrice(base, true)
	got, _ := MedianByPrice(sorted)
	assert.Equal(t, want, got.PriceCents)
	got, _ = MedianByPrice(SortByPrice(base, false))
	assert.Equal(t, want, got.PriceCents)
}
