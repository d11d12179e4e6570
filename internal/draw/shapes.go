package draw

// rasterLine walks the pixels of a line using Bresenham's algorithm.
func rasterLine(x1, y1, x2, y2 int, plot func(x, y int)) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		plot(x1, y1)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// rasterDisc walks the pixels whose centers fall inside a disc given in
// pixel space. Discs smaller than a pixel still cover the pixel under their
// center.
func rasterDisc(cx, cy, r float64, plot func(x, y int)) {
	if r < 1 {
		plot(round(cx), round(cy))
		return
	}

	yStart := round(cy - r)
	yEnd := round(cy + r)
	r2 := r * r
	for y := yStart; y <= yEnd; y++ {
		fy := float64(y) - cy
		for x := round(cx - r); x <= round(cx+r); x++ {
			fx := float64(x) - cx
			if fx*fx+fy*fy <= r2 {
				plot(x, y)
			}
		}
	}
}
