package queue

import "math"

// ProbFunc is the monotone f(x) (f(0)=0, f(1)=1) that splits a depth
// decrease between the quantity ahead of and behind a resting order in
// ProbQueueModel, where x = front / (front+behind).
type ProbFunc func(x float64) float64

// IdentityProbQueueFunc is f(x) = x.
func IdentityProbQueueFunc(x float64) float64 { return x }

// SquareProbQueueFunc is f(x) = x².
func SquareProbQueueFunc(x float64) float64 { return x * x }

// PowerProbQueueFunc returns f(x) = xⁿ.
func PowerProbQueueFunc(n float64) ProbFunc {
	return func(x float64) float64 { return math.Pow(x, n) }
}

// LogProbQueueFunc is f(x) = log(1+x) / log(2), satisfying f(0)=0, f(1)=1.
func LogProbQueueFunc(x float64) float64 { return math.Log1p(x) / math.Ln2 }

// normalize2 and normalize3 implement the "2"/"3" variants that take a
// reference total queue size: normalize2 multiplies f(x) by
// min(1, x + 1/totalQueueSize), normalize3 by the square root of that
// factor (result capped at 1). The factor is at most 1, so the front
// share of a depth decrease never exceeds f(x), and a larger
// totalQueueSize lowers it further. A non-positive totalQueueSize leaves
// f(x) unchanged.
func normalize2(f ProbFunc, totalQueueSize float64) ProbFunc {
	return func(x float64) float64 {
		if totalQueueSize <= 0 {
			return f(x)
		}
		return f(x) * math.Min(1, x+1/totalQueueSize)
	}
}

func normalize3(f ProbFunc, totalQueueSize float64) ProbFunc {
	return func(x float64) float64 {
		if totalQueueSize <= 0 {
			return f(x)
		}
		scaled := f(x) * math.Sqrt(math.Min(1, x+1/totalQueueSize))
		return math.Min(1, scaled)
	}
}

// IdentityProbQueueFunc2 normalizes IdentityProbQueueFunc by totalQueueSize.
func IdentityProbQueueFunc2(totalQueueSize float64) ProbFunc {
	return normalize2(IdentityProbQueueFunc, totalQueueSize)
}

// SquareProbQueueFunc2 normalizes SquareProbQueueFunc by totalQueueSize.
func SquareProbQueueFunc2(totalQueueSize float64) ProbFunc {
	return normalize2(SquareProbQueueFunc, totalQueueSize)
}

// LogProbQueueFunc2 normalizes LogProbQueueFunc by totalQueueSize.
func LogProbQueueFunc2(totalQueueSize float64) ProbFunc {
	return normalize2(LogProbQueueFunc, totalQueueSize)
}

// IdentityProbQueueFunc3 normalizes IdentityProbQueueFunc by totalQueueSize
// using the sqrt-scaled variant.
func IdentityProbQueueFunc3(totalQueueSize float64) ProbFunc {
	return normalize3(IdentityProbQueueFunc, totalQueueSize)
}

// SquareProbQueueFunc3 normalizes SquareProbQueueFunc by totalQueueSize
// using the sqrt-scaled variant.
func SquareProbQueueFunc3(totalQueueSize float64) ProbFunc {
	return normalize3(SquareProbQueueFunc, totalQueueSize)
}

// LogProbQueueFunc3 normalizes LogProbQueueFunc by totalQueueSize using the
// sqrt-scaled variant.
func LogProbQueueFunc3(totalQueueSize float64) ProbFunc {
	return normalize3(LogProbQueueFunc, totalQueueSize)
}
