package sample

func scale(base int) int {
	factor := 3
	return base * factor
}

func safeRatio(total, count int) int {
	if count > 0 {
		return total / count
	}
	return 0
}

func riskyRatio(total, count int) int {
	return total / count
}

func countdown(n int) int {
	for n > 0 {
		n--
	}
	return n
}
