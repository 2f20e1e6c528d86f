package game

func (b *Board) neighbors(i int) neighbors {
	var n neighbors
	below := i + b.columns
	if below < len(b.panels) {
		n.below = &b.panels[below]
	} else {
		n.below = &b.next[i%b.columns]
	}
	if i%b.columns+1 < b.columns {
		n.right = &b.panels[i+1]
		if below+1 < len(b.panels) {
			n.belowRight = &b.panels[below+1]
		} else {
			n.belowRight = &b.next[(i+1)%b.columns]
		}
	}
	return n
}

// Update advances the board by one tick and reports the match it started,
// if any.
func (b *Board) Update() MatchInfo {
	if b.Finished() {
		return MatchInfo{}
	}

	needMatches, skip := false, false
	// A finished rise shifts even while frozen.
	if b.state == Rised || (b.state == Stopped && b.resume == Rised) {
		b.shift()
		needMatches = true
		skip = true
		if b.state == Stopped {
			b.resume = GenerateNext
		} else {
			b.state = GenerateNext
		}
		b.rise = 0
		b.lines++
	}

	stopRising, inMatch, inCascade := false, false, false
	for i := len(b.panels) - 1; i >= 0; i-- {
		p := &b.panels[i]
		// Falls carry the flag into cells already swept.
		inCascade = inCascade || p.cascade
		if p.IsFalling() || p.state == EndFall || p.IsSwapping() || p.IsMatchState() {
			stopRising = true
		}
		if p.update(b.neighbors(i)) {
			needMatches = true
		}
		if p.IsMatchState() {
			inMatch = true
		}
		inCascade = inCascade || p.cascade
	}

	if !inMatch {
		b.chain = 0
	}
	if !inMatch && !inCascade {
		b.cascade = 0
	}

	var info MatchInfo
	if needMatches {
		info = b.updateMatches()
	}
	if info.FallMatch {
		b.cascade++
		info.Cascade = b.cascade
	}
	if info.SwapMatch {
		info.Chain = b.chain
		b.chain++
	}

	if skip || stopRising {
		return info
	}

	if b.state == Stopped {
		b.timeout--
		if b.timeout >= 0 {
			return info
		}
		b.timeout = 0
		b.state = b.resume
	}

	switch b.state {
	case PuzzleMode:
		b.updatePuzzle()
	case Rising:
		b.updateRising()
	case FastRising:
		b.updateFastRising()
	case RequestFastRise:
		b.state = FastRising
		b.riseCounter = riseUnit - 1 - b.speed
	case GenerateNext:
		b.generateNext()
		b.state = Rising
	case Clogged:
		b.updateClogged()
	case Rised, Stopped, Win, GameOver:
	}
	return info
}

func (b *Board) updatePuzzle() {
	win := b.AllEmpty()
	if (b.moves == 0 || win) && b.AllIdle() {
		if win {
			b.state = Win
		} else {
			b.state = GameOver
		}
	}
}

// riseComplete moves to Rised, or Clogged when the top row is occupied.
func (b *Board) riseComplete() {
	if b.Danger() {
		b.state = Clogged
	} else {
		b.state = Rised
	}
}

func (b *Board) updateRising() {
	switch {
	case b.riseCounter == riseUnit-1:
		b.riseCounter -= riseUnit
		b.riseCounter += b.speed
	case b.riseCounter > riseUnit-1:
		b.rise++
		b.riseCounter -= riseUnit
	default:
		b.riseCounter += b.speed
	}
	if b.rise >= riseSteps {
		b.riseComplete()
	}
}

func (b *Board) updateFastRising() {
	if b.riseCounter > 0 {
		b.rise++
	}
	b.riseCounter = riseUnit - 1 - b.speed
	if b.rise >= riseSteps {
		b.riseCounter -= riseUnit
		b.riseComplete()
	}
}

func (b *Board) updateClogged() {
	if b.kind == Endless {
		b.state = GameOver
		return
	}
	if !b.Danger() {
		b.state = Rised
		return
	}
	if b.rise >= riseSteps {
		b.state = GameOver
		return
	}
	if b.riseCounter >= riseUnit-1 {
		b.rise++
		b.riseCounter -= riseUnit
	} else {
		b.riseCounter += b.speed
	}
}
