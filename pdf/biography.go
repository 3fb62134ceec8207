package pdf

import (
	"circle/models"
	"errors"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const maxChapterPhotos = 3

var (
	ErrNoChapters = errors.New("No chapters provided for PDF generation")

	chapterYears = regexp.MustCompile(`\((\d{4})\s*[-–]\s*(\d{4})\)`)

	placeKeywords = []string{"home", "school", "work", "vacation", "wedding", "church"}
	eventKeywords = []string{"birthday", "graduation", "wedding", "holiday", "anniversary", "trip"}
)

type BiographyOptions struct {
	Title    string
	Subtitle string
	Chapters []models.Chapter
	// Images available for illustrating the chapters, none when empty
	Photos []models.Media
	// Names that count as a match when both chapter and photo mention them
	FamilyNames []string
}

// Biography renders the cover, table of contents and one section per chapter
func Biography(w io.Writer, opts BiographyOptions, images ImageLoader) error {
	if len(opts.Chapters) == 0 {
		return ErrNoChapters
	}
	d := newDocument(opts.Title, images)
	d.withFooter(opts.Title)

	// Cover
	d.pdf.AddPage()
	d.pdf.SetY(90)
	d.setFont("Helvetica", "B", 36, colorBurgundy)
	d.centered(opts.Title, 15)
	d.pdf.Ln(6)
	d.setFont("Helvetica", "I", 18, colorGold)
	d.centered(opts.Subtitle, 9)
	d.pdf.Ln(20)
	d.setFont("Helvetica", "", 11, colorLight)
	d.centered(time.Now().Format("January 2006"), 6)

	// Contents
	d.pdf.AddPage()
	d.heading("Contents", 24, colorBurgundy)
	d.rule()
	d.setFont("Helvetica", "", 12, colorDark)
	for i, chapter := range opts.Chapters {
		title := chapter.Title
		if utf8.RuneCountInString(title) > 60 {
			title = string([]rune(title)[:57]) + "..."
		}
		d.pdf.MultiCell(d.width, 8, d.tr(strconv.Itoa(i+1)+". "+title), "", "L", false)
	}

	used := map[uint64]bool{}
	for _, chapter := range opts.Chapters {
		photos := MatchPhotos(chapter, opts.Photos, opts.FamilyNames, used)
		d.pdf.AddPage()
		d.heading(chapter.Title, 20, colorBurgundy)
		d.rule()

		paras := paragraphs(chapter.Narrative)
		if len(paras) == 0 {
			continue
		}
		d.paragraph(paras[0])
		rest := photos
		if len(photos) > 0 && d.photo(&photos[0], 127, 89, photoCaption(&photos[0], false)) {
			rest = photos[1:]
		}
		for _, p := range paras[1:] {
			d.paragraph(p)
		}
		for i := range rest {
			d.photo(&rest[i], 102, 76, photoCaption(&rest[i], false))
		}
	}
	return d.output(w)
}

// MatchPhotos picks up to three photos for a chapter: first those whose year
// falls in a "(1955-1965)" range in the title, then the best keyword matches.
// Photos already in used are skipped and the chosen ones are added to it.
func MatchPhotos(chapter models.Chapter, photos []models.Media, familyNames []string, used map[uint64]bool) []models.Media {
	result := []models.Media{}
	taken := func(m *models.Media) bool { return used[m.ID] }
	take := func(m *models.Media) {
		used[m.ID] = true
		result = append(result, *m)
	}

	if match := chapterYears.FindStringSubmatch(chapter.Title); match != nil {
		from, _ := strconv.Atoi(match[1])
		to, _ := strconv.Atoi(match[2])
		for i := range photos {
			if len(result) == maxChapterPhotos {
				return result
			}
			m := &photos[i]
			if !taken(m) && m.Year != nil && *m.Year >= from && *m.Year <= to {
				take(m)
			}
		}
	}

	content := strings.ToLower(chapter.Title + " " + chapter.Narrative)
	type scored struct {
		score int
		index int
	}
	candidates := []scored{}
	for i := range photos {
		m := &photos[i]
		if taken(m) {
			continue
		}
		photoText := strings.ToLower(m.Title + " " + m.Description)
		score := 0
		for _, name := range familyNames {
			if name = strings.ToLower(strings.TrimSpace(name)); name != "" && strings.Contains(content, name) && strings.Contains(photoText, name) {
				score += 10
			}
		}
		for _, keyword := range placeKeywords {
			if strings.Contains(content, keyword) && strings.Contains(photoText, keyword) {
				score += 5
			}
		}
		for _, keyword := range eventKeywords {
			if strings.Contains(content, keyword) && strings.Contains(photoText, keyword) {
				score += 5
			}
		}
		if m.Year != nil && strings.Contains(content, strconv.Itoa(*m.Year)) {
			score += 8
		}
		if score > 0 {
			candidates = append(candidates, scored{score, i})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	for _, c := range candidates {
		if len(result) == maxChapterPhotos {
			break
		}
		take(&photos[c.index])
	}
	return result
}

// FileName is the download name, e.g. family_biography_the_making_of_a_life.pdf
func FileName(prefix, title string) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
	name = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, name)
	if name == "" {
		return prefix + ".pdf"
	}
	return prefix + "_" + name + ".pdf"
}
