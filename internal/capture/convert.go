package capture

import "gocv.io/x/gocv"

// ToRGB converts a BGR frame, as delivered by OpenCV capture, into the RGB
// channel order hand-landmark models expect. The result has the same size.
// The caller is responsible for closing the returned Mat.
func ToRGB(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToRGB)
	return dst
}

// ToBGR is the inverse of ToRGB.
// The caller is responsible for closing the returned Mat.
func ToBGR(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorRGBToBGR)
	return dst
}

// Mirror returns a horizontally flipped copy of src so on-screen motion
// matches the user's own movement.
// The caller is responsible for closing the returned Mat.
func Mirror(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Flip(src, &dst, 1)
	return dst
}
