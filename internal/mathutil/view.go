package mathutil

import "math"

var (
	// ZUpToYUp converts model space (Z up, facing +X) to view space
	// (Y up, facing +Z): Rx(-90°) @ Rz(-90°).
	ZUpToYUp = Mat3Mul(RotX(math.Pi/-2), RotZ(math.Pi/-2))

	// ViewDefault is the preview camera: a slight downward tilt and a quarter
	// turn so the model is seen three-quarters from the front.
	ViewDefault = ViewMatrix(30, 10)
)

// ViewMatrix orients a model for viewing. yaw spins the model about its own up
// axis and pitch tilts the camera down, both in degrees.
func ViewMatrix(yaw, pitch float64) Mat3 {
	return Mat3Mul(Mat3Mul(RotX(Deg2Rad(pitch)), ZUpToYUp), RotZ(Deg2Rad(yaw)))
}

// RotX returns a 3×3 rotation matrix around the X axis. Angle in radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotY returns a 3×3 rotation matrix around the Y axis.
func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// RotZ returns a 3×3 rotation matrix around the Z axis.
func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}
