package textutil

// DigitRuns returns every maximal run of consecutive ASCII digits in the
// input whose length falls within [minLen, maxLen], in order of appearance.
func DigitRuns(value string, minLen, maxLen int) []string {
	if minLen <= 0 {
		minLen = 1
	}
	var runs []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		length := end - start
		if length >= minLen && (maxLen <= 0 || length <= maxLen) {
			runs = append(runs, value[start:end])
		}
		start = -1
	}
	for i, r := range value {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(value))
	return runs
}

// FirstDigitRun returns the first digit run within the length bounds, or ""
// when none exists.
func FirstDigitRun(value string, minLen, maxLen int) string {
	runs := DigitRuns(value, minLen, maxLen)
	if len(runs) == 0 {
		return ""
	}
	return runs[0]
}
