package codec

import "math"

func bits64(f float64) uint64    { return math.Float64bits(f) }
func math64bits(u uint64) float64 { return math.Float64frombits(u) }
