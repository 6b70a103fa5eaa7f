package types

import "math"

// Deg2Rad 角度转弧度
func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Rad2Deg 弧度转角度
func Rad2Deg(rad float64) float64 { return rad * 180 / math.Pi }
