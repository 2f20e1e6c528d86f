package game

var comboBonus = map[int]int{
	4: 20, 5: 30, 6: 50, 7: 60, 8: 70, 9: 80, 10: 100,
	11: 140, 12: 170,
}

var cascadeBonus = []int{0, 0, 50, 80, 150, 300, 400, 500, 700, 900, 1100, 1300, 1500, 1800}

// Points is the score awarded for one match.
func Points(info MatchInfo) int {
	if !info.Matched() {
		return 0
	}
	points := 10 * info.Combo
	if bonus, ok := comboBonus[info.Combo]; ok {
		points += bonus
	} else if info.Combo > 12 {
		points += 170 + 30*(info.Combo-12)
	}
	if info.FallMatch {
		step := info.Cascade + 1
		if step >= len(cascadeBonus) {
			step = len(cascadeBonus) - 1
		}
		points += cascadeBonus[step]
	}
	return points
}

// StopTime is how long a driver freezes the rise after a match: big
// combos and every cascade step buy time.
func StopTime(info MatchInfo) int {
	t := 0
	if info.Combo > 3 {
		t += 20 * (info.Combo - 3)
	}
	if info.FallMatch {
		t += 40 + 20*info.Cascade
	}
	return t
}
