package storyboard

import (
	"fmt"
	"sort"
)

type Slides []*Slide

// Slide is one slide of a storyboard. The HTML field is the authoritative
// representation; everything derived from it (structured elements, raster
// snapshots) is disposable.
type Slide struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	HTML        string `json:"html"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
}

// Deck is an ordered set of slides with a deck-level title.
type Deck struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Slides      Slides `json:"slides"`
}

// Sort orders slides ascending by ID.
func (s Slides) Sort() { //nostyle:recvtype
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].ID < s[j].ID
	})
}

// renumber reassigns IDs to 1..N in current order. IDs double as the render
// anchor and the export order key, so every structural change renumbers.
func (d *Deck) renumber() {
	for i, s := range d.Slides {
		s.ID = i + 1
	}
}

// AppendSlide adds a slide at the end of the deck.
func (d *Deck) AppendSlide(s *Slide) {
	d.Slides = append(d.Slides, s)
	d.renumber()
}

// InsertSlide inserts a slide at index (0-based).
func (d *Deck) InsertSlide(index int, s *Slide) error {
	if index < 0 || index > len(d.Slides) {
		return fmt.Errorf("index out of range: %d", index)
	}
	d.Slides = append(d.Slides[:index], append(Slides{s}, d.Slides[index:]...)...)
	d.renumber()
	return nil
}

// RemoveSlide removes the slide with the given ID.
func (d *Deck) RemoveSlide(id int) error {
	for i, s := range d.Slides {
		if s.ID == id {
			d.Slides = append(d.Slides[:i], d.Slides[i+1:]...)
			d.renumber()
			return nil
		}
	}
	return fmt.Errorf("slide not found: %d", id)
}

// MoveSlide moves the slide at index from to index to.
func (d *Deck) MoveSlide(from, to int) error {
	if from < 0 || from >= len(d.Slides) || to < 0 || to >= len(d.Slides) {
		return fmt.Errorf("index out of range: from=%d to=%d", from, to)
	}
	if from == to {
		return nil
	}
	s := d.Slides[from]
	d.Slides = append(d.Slides[:from], d.Slides[from+1:]...)
	d.Slides = append(d.Slides[:to], append(Slides{s}, d.Slides[to:]...)...)
	d.renumber()
	return nil
}

// Slide returns the slide with the given ID, or nil.
func (d *Deck) Slide(id int) *Slide {
	for _, s := range d.Slides {
		if s.ID == id {
			return s
		}
	}
	return nil
}
