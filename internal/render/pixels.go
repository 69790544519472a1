package render

import "image"

// SwapRB exchanges the red and blue channel of every 4-byte pixel in buf,
// turning RGBA into BGRA and back.
func SwapRB(buf []byte) {
	for base := 0; base+3 < len(buf); base += 4 {
		buf[base+0], buf[base+2] = buf[base+2], buf[base+0]
	}
}

// ImageFromBGRA copies a BGRA frame of the given size into a new RGBA image.
func ImageFromBGRA(buf []byte, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	n := min(len(img.Pix), len(buf))
	copy(img.Pix, buf[:n])
	SwapRB(img.Pix[:n])
	return img
}
