// Package flyer renders the shareable athlete announcement: a fixed-layout
// 1080×1080 image for an approved registration, with an HTML printable view
// as fallback when the caller prefers a screenshot.
package flyer

import (
	"bytes"
	"fmt"
	"html/template"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const Size = 1080

var (
	black   = color.RGBA{0, 0, 0, 255}
	white   = color.RGBA{255, 255, 255, 255}
	primary = color.RGBA{239, 53, 61, 255} // event accent red
	zinc    = color.RGBA{113, 113, 122, 255}
)

// Render writes the flyer PNG for one athlete.
func Render(w io.Writer, name, category, gender string) error {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Accent frame: top bar and left column.
	draw.Draw(img, image.Rect(0, 0, Size, 16), image.NewUniform(primary), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, Size-16, Size, Size), image.NewUniform(primary), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(60, 300, 72, 780), image.NewUniform(primary), image.Point{}, draw.Src)

	drawScaledText(img, 100, 120, 8, white, "DARE")
	drawScaledText(img, 100+8*7*5, 120, 8, primary, "LEAGUE")
	drawScaledText(img, 100, 230, 3, zinc, "COMPETENCIA 1 VS 1 DE CROSSFIT")

	drawScaledText(img, 100, 400, 3, primary, "ATLETA OFICIAL")
	for i, line := range splitName(name) {
		drawScaledText(img, 100, 470+i*90, 6, white, strings.ToUpper(line))
	}

	drawScaledText(img, 100, 760, 4, white, strings.ToUpper(category))
	drawScaledText(img, 100, 830, 3, zinc, strings.ToUpper(gender))

	drawScaledText(img, 100, 980, 2, zinc, "JULIO 18-20, 2026 - CALI, COLOMBIA")

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("flyer.Render failed: %w", err)
	}
	return nil
}

// splitName wraps a full name onto up to three lines so long names stay
// inside the frame.
func splitName(name string) []string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return []string{""}
	}

	const maxChars = 18
	lines := []string{words[0]}
	for _, w := range words[1:] {
		last := lines[len(lines)-1]
		if len(last)+1+len(w) <= maxChars {
			lines[len(lines)-1] = last + " " + w
		} else {
			lines = append(lines, w)
		}
	}
	if len(lines) > 3 {
		lines = lines[:3]
	}
	return lines
}

// drawScaledText rasterizes text with the bitmap face and scales it up with
// hard pixel edges, which reads as intentional on the poster-style layout.
func drawScaledText(dst *image.RGBA, x, y, scale int, col color.Color, text string) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	if w == 0 {
		return
	}

	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			c := tmp.RGBAAt(tx, ty)
			if c.A == 0 {
				continue
			}
			rect := image.Rect(x+tx*scale, y+ty*scale, x+(tx+1)*scale, y+(ty+1)*scale)
			draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
}

var printableTmpl = template.Must(template.New("flyer").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Flyer - {{.Name}}</title>
<style>
  body { background: #000; color: #fff; font-family: sans-serif; margin: 0;
         display: flex; align-items: center; justify-content: center; min-height: 100vh; }
  .flyer { width: 1080px; height: 1080px; border-top: 16px solid #EF353D;
           border-bottom: 16px solid #EF353D; box-sizing: border-box; padding: 100px; }
  h1 { font-size: 110px; margin: 0; text-transform: uppercase; }
  h1 span { color: #EF353D; }
  .label { color: #EF353D; letter-spacing: .3em; font-weight: 900; text-transform: uppercase; }
  .name { font-size: 72px; text-transform: uppercase; border-left: 12px solid #EF353D; padding-left: 30px; }
  .meta { color: #71717a; text-transform: uppercase; letter-spacing: .2em; }
</style>
</head>
<body>
  <div class="flyer">
    <h1>DARE <span>LEAGUE</span></h1>
    <p class="meta">Competencia 1 vs 1 de CrossFit</p>
    <p class="label">Atleta Oficial</p>
    <p class="name">{{.Name}}</p>
    <p class="label">{{.Category}} &middot; {{.Gender}}</p>
    <p class="meta">Julio 18-20, 2026 &middot; Cali, Colombia</p>
  </div>
</body>
</html>
`))

// PrintableHTML is the manual-screenshot fallback for when the PNG is not
// wanted or cannot be produced client-side.
func PrintableHTML(name, category, gender string) ([]byte, error) {
	var buf bytes.Buffer
	err := printableTmpl.Execute(&buf, map[string]string{
		"Name":     name,
		"Category": category,
		"Gender":   gender,
	})
	if err != nil {
		return nil, fmt.Errorf("flyer.PrintableHTML failed: %w", err)
	}
	return buf.Bytes(), nil
}
