// Package sampledata fills an empty catalog with a small, fixed set of
// records, and clears a catalog out again.
package sampledata

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type Summary struct {
	Authors       int `json:"authors"`
	Genres        int `json:"genres"`
	Books         int `json:"books"`
	BookInstances int `json:"book_instances"`
}

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// Populate inserts the sample catalog. It doesn't check for existing
// records, so running it twice duplicates everything.
func Populate(ctx context.Context, s store.Store) (*Summary, error) {
	sum := &Summary{}
	insert := func(e models.Entity) (int, error) {
		id, err := s.Insert(ctx, e)
		if err != nil {
			return 0, errors.Wrapf(err, "insert %s", e.EntityKind())
		}
		return id, nil
	}

	authors := []*models.Author{
		{FirstName: "Patrick", FamilyName: "Rothfuss", DateOfBirth: date(1973, time.June, 6)},
		{FirstName: "Ben", FamilyName: "Bova", DateOfBirth: date(1932, time.November, 8)},
		{FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: date(1920, time.January, 2), DateOfDeath: date(1992, time.April, 6)},
		{FirstName: "Bob", FamilyName: "Billings"},
		{FirstName: "Jim", FamilyName: "Jones", DateOfBirth: date(1971, time.December, 16)},
	}
	authorIDs := make([]int, len(authors))
	for i, a := range authors {
		id, err := insert(a)
		if err != nil {
			return nil, err
		}
		authorIDs[i] = id
		sum.Authors++
	}

	genres := []string{"Fantasy", "Science Fiction", "French Poetry"}
	genreIDs := make([]int, len(genres))
	for i, name := range genres {
		id, err := insert(&models.Genre{Name: name})
		if err != nil {
			return nil, err
		}
		genreIDs[i] = id
		sum.Genres++
	}

	books := []*models.Book{
		{Title: "The Name of the Wind (The Kingkiller Chronicle, #1)", Summary: "I have stolen princesses back from sleeping barrow kings.", ISBN: "9781473211896", AuthorID: authorIDs[0], GenreIDs: []int{genreIDs[0]}},
		{Title: "The Wise Man's Fear (The Kingkiller Chronicle, #2)", Summary: "Picking up the tale of Kvothe Kingkiller once again.", ISBN: "9788401352836", AuthorID: authorIDs[0], GenreIDs: []int{genreIDs[0]}},
		{Title: "The Slow Regard of Silent Things (Kingkiller Chronicle)", Summary: "Deep below the University, there is a dark place.", ISBN: "9780756411336", AuthorID: authorIDs[0], GenreIDs: []int{genreIDs[0]}},
		{Title: "Apes and Angels", Summary: "Humankind headed out to the stars not for conquest, nor exploration, nor even for curiosity.", ISBN: "9780765379528", AuthorID: authorIDs[1], GenreIDs: []int{genreIDs[1]}},
		{Title: "Death Wave", Summary: "In Ben Bova's previous novel New Earth, Jordan Kell led the first human mission beyond the solar system.", ISBN: "9780765379504", AuthorID: authorIDs[1], GenreIDs: []int{genreIDs[1]}},
		{Title: "Test Book 1", Summary: "Summary of test book 1", ISBN: "ISBN111111", AuthorID: authorIDs[4], GenreIDs: []int{genreIDs[0], genreIDs[1]}},
		{Title: "Test Book 2", Summary: "Summary of test book 2", ISBN: "ISBN222222", AuthorID: authorIDs[4]},
	}
	bookIDs := make([]int, len(books))
	for i, b := range books {
		id, err := insert(b)
		if err != nil {
			return nil, err
		}
		bookIDs[i] = id
		sum.Books++
	}

	due := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	instances := []*models.BookInstance{
		{BookID: bookIDs[0], Imprint: "London Gollancz, 2014.", Status: models.BookInstanceStatusAvailable, DueBack: due},
		{BookID: bookIDs[1], Imprint: " Gollancz, 2011.", Status: models.BookInstanceStatusLoaned, DueBack: due},
		{BookID: bookIDs[2], Imprint: " Gollancz, 2015.", Status: models.BookInstanceStatusAvailable, DueBack: due},
		{BookID: bookIDs[3], Imprint: "New York Tom Doherty Associates, 2016.", Status: models.BookInstanceStatusAvailable, DueBack: due},
		{BookID: bookIDs[3], Imprint: "New York Tom Doherty Associates, 2016.", Status: models.BookInstanceStatusAvailable, DueBack: due},
		{BookID: bookIDs[3], Imprint: "New York Tom Doherty Associates, 2016.", Status: models.BookInstanceStatusAvailable, DueBack: due},
		{BookID: bookIDs[4], Imprint: "New York, NY Tom Doherty Associates, LLC, 2015.", Status: models.BookInstanceStatusAvailable, DueBack: due},
		{BookID: bookIDs[4], Imprint: "New York, NY Tom Doherty Associates, LLC, 2015.", Status: models.BookInstanceStatusMaintenance, DueBack: due},
		{BookID: bookIDs[4], Imprint: "New York, NY Tom Doherty Associates, LLC, 2015.", Status: models.BookInstanceStatusLoaned, DueBack: due},
		{BookID: bookIDs[0], Imprint: "Imprint XXX2", Status: models.BookInstanceStatusMaintenance, DueBack: due},
		{BookID: bookIDs[1], Imprint: "Imprint XXX3", Status: models.BookInstanceStatusReserved, DueBack: due},
	}
	for _, bi := range instances {
		if _, err := insert(bi); err != nil {
			return nil, err
		}
		sum.BookInstances++
	}

	return sum, nil
}

// deleteOrder lists kinds so that every record is deleted after the records
// that reference it.
var deleteOrder = []models.Kind{
	models.KindBookInstance,
	models.KindBook,
	models.KindGenre,
	models.KindAuthor,
}

// Reset deletes every record. It bypasses the delete guard, which is safe
// only because referencing kinds are emptied first.
func Reset(ctx context.Context, s store.Store) (*Summary, error) {
	sum := &Summary{}
	counters := map[models.Kind]*int{
		models.KindAuthor:       &sum.Authors,
		models.KindGenre:        &sum.Genres,
		models.KindBook:         &sum.Books,
		models.KindBookInstance: &sum.BookInstances,
	}
	for _, kind := range deleteOrder {
		records, err := s.FindMany(ctx, kind, store.Query{Fields: []string{"id"}})
		if err != nil {
			return nil, errors.Wrapf(err, "list %s", kind)
		}
		for _, r := range records {
			if err := s.DeleteByID(ctx, kind, r.EntityID()); err != nil {
				return nil, errors.Wrapf(err, "delete %s %d", kind, r.EntityID())
			}
			*counters[kind]++
		}
	}
	return sum, nil
}
