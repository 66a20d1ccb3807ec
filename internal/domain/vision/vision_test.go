package vision_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	vision "github.com/okian/enso/internal/domain/vision"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCircularityScorer_Score(t *testing.T) {
	Convey("Given a scorer with default options", t, func() {
		scorer := vision.New()
		ctx := context.Background()

		Convey("When scoring a filled disk", func() {
			img := whiteCanvas(160, 160)
			fillDisk(img, 80, 80, 60, ink())

			result, err := scorer.Score(ctx, pngBytes(img))

			Convey("Then the score sits near the top of the scale", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeGreaterThan, 90)
				So(result.Score, ShouldBeLessThanOrEqualTo, 100.5)
				So(result.Contours, ShouldEqual, 1)
				So(result.Circle.Radius, ShouldAlmostEqual, 60, 1)
			})
		})

		Convey("When scoring a drawn ring instead of a filled disk", func() {
			img := whiteCanvas(160, 160)
			fillRing(img, 80, 80, 60, 52, ink())

			result, err := scorer.Score(ctx, pngBytes(img))

			Convey("Then the outer boundary scores like the disk", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeGreaterThan, 90)
			})
		})

		Convey("When scoring a wide ellipse", func() {
			img := whiteCanvas(170, 60)
			fillEllipse(img, 85, 30, 70, 18, ink())

			result, err := scorer.Score(ctx, pngBytes(img))

			Convey("Then the score lands well below a circle's", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeGreaterThan, 10)
				So(result.Score, ShouldBeLessThan, 45)
			})
		})

		Convey("When scoring a thin straight line", func() {
			img := whiteCanvas(120, 40)
			fillRect(img, 10, 18, 110, 21, ink())

			result, err := scorer.Score(ctx, pngBytes(img))

			Convey("Then the score is near zero", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeLessThan, 10)
			})
		})

		Convey("When scoring a single dot", func() {
			img := whiteCanvas(50, 50)
			img.SetNRGBA(25, 25, ink())

			result, err := scorer.Score(ctx, pngBytes(img))

			Convey("Then the degenerate shape scores exactly zero without rejection", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 0)
			})
		})

		Convey("When the canvas is blank", func() {
			result, err := scorer.Score(ctx, pngBytes(whiteCanvas(80, 80)))

			Convey("Then it is rejected as shapeless", func() {
				So(errors.Is(err, vision.ErrNoShapeFound), ShouldBeTrue)
				So(result.Score, ShouldEqual, 0)
			})
		})

		Convey("When the payload is not an image", func() {
			_, err := scorer.Score(ctx, []byte("definitely not pixels"))

			Convey("Then it is rejected as undecodable", func() {
				So(errors.Is(err, vision.ErrDecodeFailed), ShouldBeTrue)
			})
		})

		Convey("When the payload is empty", func() {
			_, err := scorer.Score(ctx, nil)

			Convey("Then it is rejected as undecodable", func() {
				So(errors.Is(err, vision.ErrDecodeFailed), ShouldBeTrue)
			})
		})

		Convey("When the canvas holds a large disk and a small blob", func() {
			img := whiteCanvas(200, 200)
			fillDisk(img, 70, 70, 50, ink())
			fillRect(img, 150, 150, 160, 160, ink())

			result, err := scorer.Score(ctx, pngBytes(img))

			Convey("Then the larger shape decides the score", func() {
				So(err, ShouldBeNil)
				So(result.Contours, ShouldEqual, 2)
				So(result.Score, ShouldBeGreaterThan, 90)
			})
		})

		Convey("When scoring the same bytes twice", func() {
			img := whiteCanvas(160, 160)
			fillEllipse(img, 80, 80, 55, 40, ink())
			data := pngBytes(img)

			first, err1 := scorer.Score(ctx, data)
			second, err2 := scorer.Score(ctx, data)

			Convey("Then the results are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.Score, ShouldEqual, second.Score)
				So(first.Area, ShouldEqual, second.Area)
				So(first.Circle.Radius, ShouldEqual, second.Circle.Radius)
			})
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := scorer.Score(cancelled, pngBytes(whiteCanvas(10, 10)))

			Convey("Then scoring backs out", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a scorer with a raised luminance threshold", t, func() {
		ctx := context.Background()
		img := whiteCanvas(120, 120)
		fillDisk(img, 60, 60, 40, color.NRGBA{R: 180, G: 180, B: 180, A: 255})
		data := pngBytes(img)

		Convey("When the default scorer looks at light-gray ink", func() {
			_, err := vision.New().Score(ctx, data)

			Convey("Then the drawing is invisible to it", func() {
				So(errors.Is(err, vision.ErrNoShapeFound), ShouldBeTrue)
			})
		})

		Convey("When the threshold admits light grays", func() {
			result, err := vision.New(vision.WithLuminanceThreshold(200)).Score(ctx, data)

			Convey("Then the drawing scores normally", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeGreaterThan, 90)
			})
		})
	})

	Convey("Given a scorer with a tiny pixel budget", t, func() {
		scorer := vision.New(vision.WithMaxPixels(1000))

		Convey("When the image header declares more pixels", func() {
			_, err := scorer.Score(context.Background(), pngBytes(whiteCanvas(100, 100)))

			Convey("Then it is rejected before decoding", func() {
				So(errors.Is(err, vision.ErrDecodeFailed), ShouldBeTrue)
			})
		})
	})

	Convey("Given a scorer clamped to the scale", t, func() {
		scorer := vision.New(vision.WithClampToScale(true))

		Convey("When scoring a disk", func() {
			img := whiteCanvas(160, 160)
			fillDisk(img, 80, 80, 60, ink())

			result, err := scorer.Score(context.Background(), pngBytes(img))

			Convey("Then the score never exceeds 100", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeLessThanOrEqualTo, 100)
			})
		})
	})
}

func TestCircularityScorer_Formats(t *testing.T) {
	Convey("Given one disk drawing in several encodings", t, func() {
		scorer := vision.New()
		ctx := context.Background()
		img := whiteCanvas(160, 160)
		fillDisk(img, 80, 80, 60, ink())

		Convey("When the drawing arrives as JPEG", func() {
			var buf bytes.Buffer
			So(jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}), ShouldBeNil)

			result, err := scorer.Score(ctx, buf.Bytes())

			Convey("Then compression artifacts barely move the score", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeGreaterThan, 85)
			})
		})

		Convey("When the drawing arrives as BMP", func() {
			var buf bytes.Buffer
			So(bmp.Encode(&buf, img), ShouldBeNil)

			result, err := scorer.Score(ctx, buf.Bytes())

			Convey("Then it scores like the PNG", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeGreaterThan, 90)
			})
		})

		Convey("When the drawing arrives as grayscale PNG", func() {
			gray := image.NewGray(image.Rect(0, 0, 160, 160))
			for i := range gray.Pix {
				gray.Pix[i] = 255
			}
			for y := 0; y < 160; y++ {
				for x := 0; x < 160; x++ {
					dx, dy := x-80, y-80
					if dx*dx+dy*dy <= 60*60 {
						gray.SetGray(x, y, color.Gray{})
					}
				}
			}
			var buf bytes.Buffer
			So(png.Encode(&buf, gray), ShouldBeNil)

			result, err := scorer.Score(ctx, buf.Bytes())

			Convey("Then it scores like the color PNG", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeGreaterThan, 90)
			})
		})
	})
}

func ink() color.NRGBA {
	return color.NRGBA{A: 255}
}

func whiteCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func fillDisk(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func fillRing(img *image.NRGBA, cx, cy, outer, inner int, c color.NRGBA) {
	for y := cy - outer; y <= cy+outer; y++ {
		for x := cx - outer; x <= cx+outer; x++ {
			dx, dy := x-cx, y-cy
			dd := dx*dx + dy*dy
			if dd <= outer*outer && dd >= inner*inner {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func fillEllipse(img *image.NRGBA, cx, cy, rx, ry int, c color.NRGBA) {
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx*ry*ry+dy*dy*rx*rx <= rx*rx*ry*ry {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func fillRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// pngBytes encodes img; writing to a memory buffer cannot fail.
func pngBytes(img image.Image) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
