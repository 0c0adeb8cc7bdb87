// Package cards composites the "combat record" style stat-card images that
// get attached to lookup replies: a template background with drawn text rows
// and optional remote icons pasted alongside.
package cards

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // icon decoding
	"image/png"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/RickyLoader/RileyBot-sub001/internal/stats"
	"github.com/RickyLoader/RileyBot-sub001/pkg/util"
)

const (
	cardWidth  = 480
	rowHeight  = 22
	marginX    = 16
	marginTop  = 40
	iconSize   = 16
	iconGapX   = 6
	maxWorkers = 4
)

var (
	backgroundColor = color.RGBA{R: 0x23, G: 0x27, B: 0x2a, A: 0xff}
	headerColor     = color.RGBA{R: 0xff, G: 0xcc, B: 0x4d, A: 0xff}
	textColor       = color.RGBA{R: 0xdc, G: 0xdd, B: 0xde, A: 0xff}
	dividerColor    = color.RGBA{R: 0x40, G: 0x44, B: 0x4b, A: 0xff}
)

// Row is one stat line on a card. IconURL may be empty.
type Row struct {
	Label   string
	Value   string
	IconURL string
}

// Card describes one stat card to composite.
type Card struct {
	Title string
	Rows  []Row
}

// Renderer turns Cards into PNG bytes. Icons are fetched through the shared
// stats client so the provider rate limits apply to them too.
type Renderer struct {
	fetcher *stats.Client
	log     zerolog.Logger
}

func NewRenderer(fetcher *stats.Client, log zerolog.Logger) *Renderer {
	return &Renderer{fetcher: fetcher, log: log}
}

// Render composites the card and encodes it as PNG. Icon fetch failures are
// tolerated, the row is simply drawn without its icon.
func (r *Renderer) Render(ctx context.Context, card Card) ([]byte, error) {
	if len(card.Rows) == 0 {
		return nil, fmt.Errorf("cards: no rows to render")
	}

	icons := r.fetchIcons(ctx, card.Rows)

	height := marginTop + len(card.Rows)*rowHeight + marginX
	img := image.NewRGBA(image.Rect(0, 0, cardWidth, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	drawText(img, marginX, 24, card.Title, headerColor)
	drawLine(img, marginX, 30, cardWidth-marginX)

	y := marginTop + rowHeight/2
	for i, row := range card.Rows {
		x := marginX
		if icon, ok := icons[row.IconURL]; ok {
			pasteIcon(img, icon, x, y-iconSize+4)
			x += iconSize + iconGapX
		}
		drawText(img, x, y, row.Label, textColor)
		drawTextRight(img, cardWidth-marginX, y, row.Value, textColor)
		if i < len(card.Rows)-1 {
			drawLine(img, marginX, y+rowHeight/2, cardWidth-marginX)
		}
		y += rowHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("cards: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// fetchIcons downloads and decodes the distinct row icons with a bounded
// worker pool. Failures are logged and skipped.
func (r *Renderer) fetchIcons(ctx context.Context, rows []Row) map[string]image.Image {
	seen := map[string]struct{}{}
	var urls []string
	for _, row := range rows {
		if row.IconURL == "" {
			continue
		}
		if _, dup := seen[row.IconURL]; dup {
			continue
		}
		seen[row.IconURL] = struct{}{}
		urls = append(urls, row.IconURL)
	}
	if len(urls) == 0 {
		return nil
	}

	var mu sync.Mutex
	icons := make(map[string]image.Image, len(urls))

	_ = util.Parallel(ctx, urls, maxWorkers, func(ctx context.Context, url string) error {
		data, err := r.fetcher.FetchBytes(ctx, url, nil)
		if err != nil {
			r.log.Debug().Err(err).Str("url", url).Msg("icon fetch failed")
			return nil // draw the card without this icon
		}
		icon, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			r.log.Debug().Err(err).Str("url", url).Msg("icon decode failed")
			return nil
		}
		mu.Lock()
		icons[url] = icon
		mu.Unlock()
		return nil
	})
	return icons
}

func drawText(img *image.RGBA, x, y int, text string, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func drawTextRight(img *image.RGBA, right, y int, text string, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(text).Ceil()
	d.Dot = fixed.P(right-width, y)
	d.DrawString(text)
}

func drawLine(img *image.RGBA, x1, y, x2 int) {
	for x := x1; x <= x2; x++ {
		img.Set(x, y, dividerColor)
	}
}

// pasteIcon scales the icon into an iconSize square with nearest-neighbor
// sampling and draws it at (x, y).
func pasteIcon(img *image.RGBA, icon image.Image, x, y int) {
	bounds := icon.Bounds()
	for dy := 0; dy < iconSize; dy++ {
		for dx := 0; dx < iconSize; dx++ {
			sx := bounds.Min.X + dx*bounds.Dx()/iconSize
			sy := bounds.Min.Y + dy*bounds.Dy()/iconSize
			img.Set(x+dx, y+dy, icon.At(sx, sy))
		}
	}
}
