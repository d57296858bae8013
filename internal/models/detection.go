package models

// Point is a planar coordinate in raster pixels.
type Point struct {
	X float64
	Y float64
}

// Detection is one OCR-recognized text fragment.
type Detection struct {
	Polygon    [4]Point
	Text       string
	Confidence float64
}

// Centroid returns the mean of the polygon's four corners.
func (d Detection) Centroid() Point {
	var c Point
	for _, p := range d.Polygon {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(d.Polygon))
	c.Y /= float64(len(d.Polygon))
	return c
}

// RectPolygon builds the clockwise polygon of an axis-aligned box.
func RectPolygon(minX, minY, maxX, maxY float64) [4]Point {
	return [4]Point{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}
