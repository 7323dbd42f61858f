package storyboard

import "testing"

func deckTitles(d *Deck) []string {
	titles := make([]string, len(d.Slides))
	for i, s := range d.Slides {
		titles[i] = s.Title
	}
	return titles
}

func checkSequentialIDs(t *testing.T, d *Deck) {
	t.Helper()
	for i, s := range d.Slides {
		if s.ID != i+1 {
			t.Errorf("Slides[%d].ID = %d, want %d", i, s.ID, i+1)
		}
	}
}

func newTestDeck() *Deck {
	return &Deck{
		Title: "test",
		Slides: Slides{
			{ID: 1, Title: "a"},
			{ID: 2, Title: "b"},
			{ID: 3, Title: "c"},
		},
	}
}

func TestAppendSlide(t *testing.T) {
	d := newTestDeck()
	d.AppendSlide(&Slide{Title: "d"})
	if got := deckTitles(d); got[3] != "d" {
		t.Errorf("titles = %v", got)
	}
	checkSequentialIDs(t, d)
}

func TestInsertSlide(t *testing.T) {
	d := newTestDeck()
	if err := d.InsertSlide(1, &Slide{Title: "x"}); err != nil {
		t.Fatalf("InsertSlide() error = %v", err)
	}
	want := []string{"a", "x", "b", "c"}
	got := deckTitles(d)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles = %v, want %v", got, want)
		}
	}
	checkSequentialIDs(t, d)

	if err := d.InsertSlide(10, &Slide{}); err == nil {
		t.Error("InsertSlide() expected error for out-of-range index")
	}
}

func TestRemoveSlide(t *testing.T) {
	d := newTestDeck()
	if err := d.RemoveSlide(2); err != nil {
		t.Fatalf("RemoveSlide() error = %v", err)
	}
	want := []string{"a", "c"}
	got := deckTitles(d)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("titles = %v, want %v", got, want)
	}
	checkSequentialIDs(t, d)

	if err := d.RemoveSlide(99); err == nil {
		t.Error("RemoveSlide() expected error for unknown id")
	}
}

func TestMoveSlide(t *testing.T) {
	d := newTestDeck()
	if err := d.MoveSlide(0, 2); err != nil {
		t.Fatalf("MoveSlide() error = %v", err)
	}
	want := []string{"b", "c", "a"}
	got := deckTitles(d)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles = %v, want %v", got, want)
		}
	}
	checkSequentialIDs(t, d)
}

func TestSlidesSort(t *testing.T) {
	s := Slides{
		{ID: 3, Title: "c"},
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b"},
	}
	s.Sort()
	for i, want := range []string{"a", "b", "c"} {
		if s[i].Title != want {
			t.Errorf("Slides[%d].Title = %q, want %q", i, s[i].Title, want)
		}
	}
}

func TestDeckSlide(t *testing.T) {
	d := newTestDeck()
	if got := d.Slide(2); got == nil || got.Title != "b" {
		t.Errorf("Slide(2) = %+v", got)
	}
	if got := d.Slide(42); got != nil {
		t.Errorf("Slide(42) = %+v, want nil", got)
	}
}
