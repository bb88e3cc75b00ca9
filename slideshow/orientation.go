package slideshow

// TransformFor returns the CSS transform that displays an image with the given EXIF orientation
// upright. Absent and unknown codes map to the identity.
func TransformFor(orientation int) string {
	switch orientation {
	case 2:
		return "scaleX(-1)"
	case 3:
		return "scaleX(-1) scaleY(-1)"
	case 4:
		return "scaleY(-1)"
	case 5:
		return "scaleX(-1) rotate(90deg)"
	case 6:
		return "rotate(90deg)"
	case 7:
		return "scaleX(-1) rotate(-90deg)"
	case 8:
		return "rotate(-90deg)"
	default:
		return "rotate(0deg)"
	}
}

// DisplaySize is the size of an image once its EXIF orientation is applied. Orientations 5 to 8
// turn the image a quarter, swapping width and height.
func DisplaySize(orientation, width, height int) (int, int) {
	if orientation >= 5 && orientation <= 8 {
		return height, width
	}
	return width, height
}
