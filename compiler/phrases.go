package compiler

// Line-classification helpers for interactive input buffering.

// OpensBlock reports whether a trimmed line opens an if/while block.
func OpensBlock(line string) bool {
	return reCheck.MatchString(line)
}

// ClosesBlock reports whether a trimmed line is an if or while terminator.
func ClosesBlock(line string) bool {
	return reIfEnd.MatchString(line) || reWhileEnd.MatchString(line)
}

// MatchesStatement reports whether a trimmed line matches any phrase of
// the statement table, including block headers and parameter specs.
func MatchesStatement(line string) bool {
	for _, re := range []interface{ MatchString(string) bool }{
		reIntro, reChorus, reVerse, reParamsNone, reParams,
		reLet, reAssign, reSay, reCheck, reIfEnd, reWhileEnd,
		reRunAssign, reRun, reReturn,
	} {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
