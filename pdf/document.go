// Package pdf renders memories and biographies as printable documents
package pdf

import (
	"bytes"
	"circle/models"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

type rgb struct{ r, g, b int }

var (
	colorBurgundy = rgb{139, 69, 19}
	colorGold     = rgb{232, 180, 79}
	colorCream    = rgb{245, 245, 220}
	colorDark     = rgb{44, 62, 80}
	colorLight    = rgb{102, 102, 102}
	colorPageNo   = rgb{136, 136, 136}
)

const (
	margin     = 20.0 // mm
	lineHeight = 6.0
	bodySize   = 11.0
)

// ImageLoader returns the JPEG bytes to embed for a media item
type ImageLoader func(m *models.Media) ([]byte, error)

type document struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	images ImageLoader
	loaded map[uint64]*fpdf.ImageInfoType
	width  float64 // usable width
}

func newDocument(title string, images ImageLoader) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("The Circle", true)
	pageWidth, _ := pdf.GetPageSize()
	d := &document{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: images,
		loaded: map[uint64]*fpdf.ImageInfoType{},
		width:  pageWidth - 2*margin,
	}
	return d
}

// withFooter numbers every page but the first, header shows the title
func (d *document) withFooter(title string) {
	d.pdf.SetFooterFunc(func() {
		if d.pdf.PageNo() == 1 {
			return
		}
		d.pdf.SetY(-15)
		d.setFont("Helvetica", "I", 9, colorPageNo)
		d.pdf.CellFormat(d.width/2, 10, d.tr(title), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(d.width/2, 10, "Page "+strconv.Itoa(d.pdf.PageNo()), "", 0, "R", false, 0, "")
	})
}

func (d *document) output(w io.Writer) error {
	if d.pdf.Err() {
		return d.pdf.Error()
	}
	return d.pdf.Output(w)
}

func (d *document) setFont(family, style string, size float64, color rgb) {
	d.pdf.SetFont(family, style, size)
	d.pdf.SetTextColor(color.r, color.g, color.b)
}

func (d *document) centered(text string, height float64) {
	d.pdf.MultiCell(d.width, height, d.tr(text), "", "C", false)
}

func (d *document) heading(text string, size float64, color rgb) {
	d.ensureSpace(size)
	d.setFont("Helvetica", "B", size, color)
	d.pdf.MultiCell(d.width, size*0.5, d.tr(text), "", "L", false)
	d.pdf.Ln(2)
}

// rule draws a gold line across the page
func (d *document) rule() {
	y := d.pdf.GetY()
	d.pdf.SetDrawColor(colorGold.r, colorGold.g, colorGold.b)
	d.pdf.SetLineWidth(0.8)
	d.pdf.Line(margin, y, margin+d.width, y)
	d.pdf.Ln(4)
}

func (d *document) paragraph(text string) {
	d.setFont("Times", "", bodySize, colorDark)
	d.pdf.MultiCell(d.width, lineHeight, d.tr(text), "", "J", false)
	d.pdf.Ln(3)
}

func (d *document) caption(text string) {
	if text == "" {
		return
	}
	d.setFont("Helvetica", "I", 9, colorLight)
	d.pdf.MultiCell(d.width, 5, d.tr(text), "", "C", false)
	d.pdf.Ln(3)
}

// pullQuote is set in italics on a cream background between gold rules
func (d *document) pullQuote(text string) {
	d.ensureSpace(30)
	d.pdf.Ln(2)
	d.rule()
	d.pdf.SetFillColor(colorCream.r, colorCream.g, colorCream.b)
	d.setFont("Times", "I", 13, colorBurgundy)
	d.pdf.SetX(margin + 10)
	d.pdf.MultiCell(d.width-20, 7, d.tr("\""+text+"\""), "", "C", true)
	d.pdf.Ln(2)
	d.rule()
}

func (d *document) ensureSpace(height float64) {
	_, pageHeight := d.pdf.GetPageSize()
	if d.pdf.GetY()+height > pageHeight-margin {
		d.pdf.AddPage()
	}
}

func (d *document) image(m *models.Media) *fpdf.ImageInfoType {
	if info, ok := d.loaded[m.ID]; ok {
		return info
	}
	d.loaded[m.ID] = nil
	if d.images == nil || d.pdf.Err() {
		return nil
	}
	data, err := d.images(m)
	if err != nil {
		zap.S().Warnf("PDF: could not load image %s: %v", m.Filename, err)
		return nil
	}
	info := d.pdf.RegisterImageOptionsReader(imageName(m), fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(data))
	if d.pdf.Err() {
		zap.S().Warnf("PDF: invalid image %s: %v", m.Filename, d.pdf.Error())
		d.pdf.ClearError()
		return nil
	}
	d.loaded[m.ID] = info
	return info
}

func imageName(m *models.Media) string {
	return "media-" + strconv.FormatUint(m.ID, 10)
}

// photo places the image centered, scaled to fit maxW x maxH, followed by the caption.
// Returns false when the image could not be loaded.
func (d *document) photo(m *models.Media, maxW, maxH float64, caption string) bool {
	info := d.image(m)
	if info == nil || info.Width() <= 0 {
		return false
	}
	w, h := maxW, maxW*info.Height()/info.Width()
	if h > maxH {
		h = maxH
		w = h * info.Width() / info.Height()
	}
	d.ensureSpace(h + 12)
	y := d.pdf.GetY() + 2
	d.pdf.ImageOptions(imageName(m), margin+(d.width-w)/2, y, w, h, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	d.pdf.SetY(y + h + 2)
	d.caption(caption)
	return true
}

func photoCaption(m *models.Media, withDescription bool) string {
	caption := m.DisplayTitle()
	if m.Year != nil {
		caption += " (" + strconv.Itoa(*m.Year) + ")"
	}
	if withDescription && m.Description != "" {
		caption += " - " + m.Description
	}
	return caption
}

// paragraphs splits on line breaks, dropping empty lines
func paragraphs(text string) []string {
	result := []string{}
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
