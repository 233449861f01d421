package calculator

// FindPeaks returns the indices of local maxima in prices. A bar is a peak when
// it is the maximum over the inclusive window [i-window, i+window] (the right
// side truncates near the end of the series) and strictly higher than its left
// neighbor. Plateaus of equal maxima collapse to their first index: any equal
// value earlier in the window disqualifies the later bar.
func FindPeaks(prices []float64, window int) []int {
	if window <= 0 || len(prices) < window+2 {
		return nil
	}
	var peaks []int
	for i := window; i < len(prices); i++ {
		if isExtremum(prices, i, window, func(a, b float64) bool { return a > b }) {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// FindTroughs is the mirror of FindPeaks for local minima.
func FindTroughs(prices []float64, window int) []int {
	if window <= 0 || len(prices) < window+2 {
		return nil
	}
	var troughs []int
	for i := window; i < len(prices); i++ {
		if isExtremum(prices, i, window, func(a, b float64) bool { return a < b }) {
			troughs = append(troughs, i)
		}
	}
	return troughs
}

// isExtremum checks the windowed dominance rule. better(a,b) reports whether a
// beats b (greater-than for peaks, less-than for troughs).
func isExtremum(prices []float64, i, window int, better func(a, b float64) bool) bool {
	lo := i - window
	hi := i + window
	if hi > len(prices)-1 {
		hi = len(prices) - 1
	}
	for j := lo; j <= hi; j++ {
		if j == i {
			continue
		}
		if better(prices[j], prices[i]) {
			return false
		}
		// Ties break toward the earlier index: first occurrence wins.
		if prices[j] == prices[i] && j < i {
			return false
		}
	}
	// Must strictly beat the immediate left neighbor; the right neighbor may be
	// equal so a plateau keeps its first bar.
	if !better(prices[i], prices[i-1]) {
		return false
	}
	return true
}

// PeakProminencePct returns the larger percentage drop from the peak at idx to
// the minima of its trailing and leading windows.
func PeakProminencePct(prices []float64, idx, window int) float64 {
	price := prices[idx]
	if price == 0 {
		return 0
	}
	left := windowMin(prices, idx-window, idx-1)
	right := windowMin(prices, idx+1, idx+window)
	leftDrop := (price - left) / price * 100
	rightDrop := (price - right) / price * 100
	if leftDrop > rightDrop {
		return leftDrop
	}
	return rightDrop
}

// TroughProminencePct mirrors PeakProminencePct: the larger percentage rise
// from the trough at idx to the maxima of its neighboring windows.
func TroughProminencePct(prices []float64, idx, window int) float64 {
	price := prices[idx]
	if price == 0 {
		return 0
	}
	left := windowMax(prices, idx-window, idx-1)
	right := windowMax(prices, idx+1, idx+window)
	leftRise := (left - price) / price * 100
	rightRise := (right - price) / price * 100
	if leftRise > rightRise {
		return leftRise
	}
	return rightRise
}

func windowMin(prices []float64, lo, hi int) float64 {
	if lo < 0 {
		lo = 0
	}
	if hi > len(prices)-1 {
		hi = len(prices) - 1
	}
	if lo > hi {
		return prices[clampIndex(prices, lo)]
	}
	m := prices[lo]
	for j := lo + 1; j <= hi; j++ {
		if prices[j] < m {
			m = prices[j]
		}
	}
	return m
}

func windowMax(prices []float64, lo, hi int) float64 {
	if lo < 0 {
		lo = 0
	}
	if hi > len(prices)-1 {
		hi = len(prices) - 1
	}
	if lo > hi {
		return prices[clampIndex(prices, lo)]
	}
	m := prices[lo]
	for j := lo + 1; j <= hi; j++ {
		if prices[j] > m {
			m = prices[j]
		}
	}
	return m
}

func clampIndex(prices []float64, i int) int {
	if i < 0 {
		return 0
	}
	if i > len(prices)-1 {
		return len(prices) - 1
	}
	return i
}
