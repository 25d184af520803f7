package world

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
)

const (
	previewScale        = 4
	previewAmbientLight = 0.35
)

// PreviewRegion is an inclusive block box rendered by the preview.
type PreviewRegion struct {
	Min BlockCoord
	Max BlockCoord
}

// SavePreview renders a top-down PNG of the region to path, creating parent directories.
func SavePreview(store *Store, region PreviewRegion, path string) error {
	if store == nil {
		return fmt.Errorf("store is nil")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preview dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	return EncodePreview(file, store, region)
}

// EncodePreview writes the top-down preview PNG of the region to w. Each column
// shows its highest solid block, brighter the higher it sits.
func EncodePreview(w io.Writer, store *Store, region PreviewRegion) error {
	min, max := region.Min, region.Max
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return fmt.Errorf("invalid preview region: %+v", region)
	}
	width := (max.X - min.X + 1) * previewScale
	height := (max.Z - min.Z + 1) * previewScale
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	background := color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	span := float64(max.Y - min.Y + 1)
	for z := min.Z; z <= max.Z; z++ {
		for x := min.X; x <= max.X; x++ {
			t, y, ok := topBlock(store, x, z, min.Y, max.Y)
			if !ok {
				continue
			}
			level := float64(y-min.Y+1) / span
			col := applyLighting(blockColor(t), previewAmbientLight+(1-previewAmbientLight)*level)
			rect := image.Rect(
				(x-min.X)*previewScale,
				(z-min.Z)*previewScale,
				(x-min.X+1)*previewScale,
				(z-min.Z+1)*previewScale,
			)
			draw.Draw(img, rect, &image.Uniform{col}, image.Point{}, draw.Src)
		}
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

func topBlock(store *Store, x, z, minY, maxY int) (BlockType, int, bool) {
	for y := maxY; y >= minY; y-- {
		if t := store.Block(x, y, z); t.Solid() {
			return t, y, true
		}
	}
	return Air, 0, false
}

func blockColor(t BlockType) color.NRGBA {
	c := t.Color()
	return color.NRGBA{
		R: uint8(math.Round(float64(c.X()) * 255)),
		G: uint8(math.Round(float64(c.Y()) * 255)),
		B: uint8(math.Round(float64(c.Z()) * 255)),
		A: 255,
	}
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = clamp(factor, 0, 1)
	r := uint8(math.Round(float64(base.R) * factor))
	g := uint8(math.Round(float64(base.G) * factor))
	b := uint8(math.Round(float64(base.B) * factor))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
