package pdf

import (
	"circle/models"
	"circle/utils"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	galleryLimit   = 20
	pullQuoteChars = 200
)

// Story is a memory with its linked photos in display order
type Story struct {
	Memory models.Memory
	Photos []models.Media
}

func (d *document) titlePage(title, tagline string) {
	d.pdf.AddPage()
	d.pdf.SetY(90)
	d.setFont("Helvetica", "B", 40, colorBurgundy)
	d.centered(title, 16)
	d.pdf.Ln(4)
	d.setFont("Helvetica", "I", 16, colorGold)
	d.centered(tagline, 8)
	d.pdf.Ln(12)
	d.setFont("Helvetica", "", 10, colorLight)
	d.centered("Created "+time.Now().Format("January 2, 2006"), 6)
}

func (d *document) story(s *Story) {
	m := &s.Memory
	header := m.DisplayDate()
	if m.Category != "" {
		if header != "" {
			header += " - "
		}
		header += m.Category
	}
	if header != "" {
		d.ensureSpace(20)
		d.setFont("Helvetica", "B", 13, colorBurgundy)
		d.pdf.MultiCell(d.width, 7, d.tr(header), "", "L", false)
		d.pdf.Ln(1)
	}

	paras := paragraphs(m.Text)
	if len(paras) == 0 {
		return
	}
	d.paragraph(paras[0])
	if len(m.Text) > pullQuoteChars && len(paras) > 1 {
		if quote := PullQuote(m.Text); quote != "" {
			d.pullQuote(quote)
		}
	}
	photos := s.Photos
	if len(photos) > 0 && d.photo(&photos[0], 76, 76, photoCaption(&photos[0], true)) {
		photos = photos[1:]
	}
	for _, p := range paras[1:] {
		d.paragraph(p)
	}
	if len(photos) > 0 {
		d.photo(&photos[0], 64, 64, photoCaption(&photos[0], false))
	}
	d.pdf.Ln(6)
}

// MemoryBook renders the stories grouped by category, in the order given
func MemoryBook(w io.Writer, title string, stories []Story, images ImageLoader) error {
	d := newDocument(title, images)
	d.withFooter(title)
	d.titlePage(title, "Family Memories")

	categories := []string{}
	byCategory := map[string][]int{}
	for i := range stories {
		c := stories[i].Memory.Category
		if c == "" {
			c = "other"
		}
		if _, ok := byCategory[c]; !ok {
			categories = append(categories, c)
		}
		byCategory[c] = append(byCategory[c], i)
	}
	for _, c := range categories {
		d.pdf.AddPage()
		d.heading(CategoryTitle(c), 24, colorBurgundy)
		if span := yearSpan(stories, byCategory[c]); span != "" {
			d.setFont("Helvetica", "I", 11, colorLight)
			d.centered(span, 6)
		}
		d.rule()
		for _, i := range byCategory[c] {
			d.story(&stories[i])
		}
	}
	return d.output(w)
}

// yearSpan is the range of years covered by the dated stories, e.g. "1962 - 1975"
func yearSpan(stories []Story, indexes []int) string {
	first, last := 0, 0
	for _, i := range indexes {
		year := stories[i].Memory.Year
		if year == nil {
			continue
		}
		if first == 0 || *year < first {
			first = *year
		}
		if *year > last {
			last = *year
		}
	}
	return utils.GetYearsString(first, last)
}

// Album renders the dated stories by decade, newest first, followed by a gallery
func Album(w io.Writer, stories []Story, gallery []models.Media, images ImageLoader) error {
	const title = "The Circle"
	d := newDocument(title, images)
	d.withFooter(title)
	d.titlePage(title, "Family Memory Album")

	decades := []int{}
	byDecade := map[int][]int{}
	for i := range stories {
		year := stories[i].Memory.Year
		if year == nil {
			continue
		}
		decade := *year / 10 * 10
		if _, ok := byDecade[decade]; !ok {
			decades = append(decades, decade)
		}
		byDecade[decade] = append(byDecade[decade], i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(decades)))
	for _, decade := range decades {
		d.pdf.AddPage()
		d.heading(strconv.Itoa(decade)+"s", 28, colorGold)
		d.rule()
		for _, i := range byDecade[decade] {
			d.story(&stories[i])
		}
	}

	d.pdf.AddPage()
	d.heading("Photo Gallery", 28, colorBurgundy)
	d.rule()
	d.grid(gallery)
	return d.output(w)
}

// grid lays the images out two per row
func (d *document) grid(photos []models.Media) {
	const maxW, maxH = 70.0, 64.0
	column := d.width / 2
	placed := 0
	rowHeight := 0.0
	rowTop := d.pdf.GetY()
	for i := range photos {
		if placed == galleryLimit {
			break
		}
		m := &photos[i]
		info := d.image(m)
		if info == nil || info.Width() <= 0 {
			continue
		}
		w, h := maxW, maxW*info.Height()/info.Width()
		if h > maxH {
			h = maxH
			w = h * info.Width() / info.Height()
		}
		col := placed % 2
		if col == 0 {
			if placed > 0 {
				rowTop += rowHeight
			}
			rowHeight = 0
			_, pageHeight := d.pdf.GetPageSize()
			if rowTop+maxH+20 > pageHeight-margin {
				d.pdf.AddPage()
				rowTop = d.pdf.GetY()
			}
		}
		x := margin + float64(col)*column
		d.pdf.ImageOptions(imageName(m), x+(column-w)/2, rowTop, w, h, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		d.pdf.SetXY(x, rowTop+h+2)
		d.setFont("Helvetica", "B", 9, colorDark)
		d.pdf.MultiCell(column, 4.5, d.tr(m.DisplayTitle()), "", "C", false)
		if m.Description != "" {
			d.pdf.SetX(x)
			d.setFont("Helvetica", "I", 8, colorLight)
			d.pdf.MultiCell(column, 4, d.tr(m.Description), "", "C", false)
		}
		rowHeight = max(rowHeight, d.pdf.GetY()-rowTop+6)
		placed++
	}
	d.pdf.SetY(rowTop + rowHeight)
}

// CategoryTitle turns "life-event" into "Life Event"
func CategoryTitle(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
