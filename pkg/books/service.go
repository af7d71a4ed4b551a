package books

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type ListBooksOptions struct {
	AuthorID *int
	GenreID  *int
}

type Service struct {
	*catalog.Resource[*models.Book]
}

func NewService(s store.Store, p *pipeline.Pipeline, opts fanout.Options) *Service {
	return &Service{catalog.New(s, p, opts, Definition())}
}

// Definition describes books to the catalog. A book is referenced by its
// copies.
func Definition() catalog.Definition[*models.Book] {
	return catalog.Definition[*models.Book]{
		Kind:   models.KindBook,
		Schema: schema,
		Build:  build,
		Dependents: []catalog.Dependency{
			{Kind: models.KindBookInstance, Field: "book", Sort: []store.Sort{store.Asc("id")}},
		},
	}
}

func build(v pipeline.Values) (*models.Book, error) {
	authorID, err := v.Int("author")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	genreIDs, err := v.Ints("genre")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &models.Book{
		Title:    v.String("title"),
		Summary:  v.String("summary"),
		ISBN:     v.String("isbn"),
		AuthorID: authorID,
		GenreIDs: genreIDs,
	}, nil
}

// ListBooks returns books sorted by title, each with its author expanded.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	filter := store.Filter{}
	if opts.AuthorID != nil {
		filter["author"] = *opts.AuthorID
	}
	if opts.GenreID != nil {
		filter[store.FieldGenre] = *opts.GenreID
	}

	books, err := svc.List(ctx, store.Query{
		Filter: filter,
		Fields: []string{"id", "title", "author"},
		Sort:   []store.Sort{store.Asc("title")},
	})
	if err != nil {
		return nil, err
	}

	authorIDs := make([]int, 0, len(books))
	seen := map[int]bool{}
	for _, b := range books {
		if !seen[b.AuthorID] {
			seen[b.AuthorID] = true
			authorIDs = append(authorIDs, b.AuthorID)
		}
	}
	authors, err := store.FindAll[*models.Author](ctx, svc.Store(), models.KindAuthor, store.Query{
		Filter: store.Filter{"id": authorIDs},
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Author, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	for _, b := range books {
		b.Author = byID[b.AuthorID]
	}
	return books, nil
}

type Detail struct {
	// Book has its author and genres expanded. Author is nil when the
	// referenced author no longer exists.
	Book      *models.Book
	Instances []*models.BookInstance
}

// RetrieveDetail loads a book, its author and genres, and its copies.
func (svc *Service) RetrieveDetail(ctx context.Context, id int) (*Detail, error) {
	g := fanout.New(ctx, svc.FanoutOptions())
	g.Go("book", func(ctx context.Context) (any, error) {
		b, err := svc.Retrieve(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := svc.expand(ctx, b); err != nil {
			return nil, err
		}
		return b, nil
	})
	g.Go("book_instances", func(ctx context.Context) (any, error) {
		return store.FindAll[*models.BookInstance](ctx, svc.Store(), models.KindBookInstance, store.Query{
			Filter: store.Filter{"book": id},
			Sort:   []store.Sort{store.Asc("id")},
		})
	})

	res, err := g.Wait()
	if err != nil {
		return nil, err
	}
	return &Detail{
		Book:      fanout.Value[*models.Book](res, "book"),
		Instances: fanout.Value[[]*models.BookInstance](res, "book_instances"),
	}, nil
}

// expand fills in the book's author and genres.
func (svc *Service) expand(ctx context.Context, b *models.Book) error {
	g := fanout.New(ctx, svc.FanoutOptions())
	g.Go("author", fanout.Optional(func(ctx context.Context) (any, error) {
		return store.Find[*models.Author](ctx, svc.Store(), models.KindAuthor, b.AuthorID)
	}))
	g.Go("genres", func(ctx context.Context) (any, error) {
		return svc.genres(ctx, b.GenreIDs)
	})

	res, err := g.Wait()
	if err != nil {
		return err
	}
	b.Author = fanout.Value[*models.Author](res, "author")
	b.Genres = fanout.Value[[]*models.Genre](res, "genres")
	return nil
}

func (svc *Service) genres(ctx context.Context, ids []int) ([]*models.Genre, error) {
	if ids == nil {
		ids = []int{}
	}
	return store.FindAll[*models.Genre](ctx, svc.Store(), models.KindGenre, store.Query{
		Filter: store.Filter{"id": ids},
		Sort:   []store.Sort{store.Asc("name")},
	})
}

// Form is what a book form offers: every author, and every genre marked
// with whether the book carries it.
type Form struct {
	Book    *models.Book
	Authors []*models.Author
	Genres  []GenreChoice
}

type GenreChoice struct {
	Genre   *models.Genre
	Checked bool
}

// RetrieveForm loads the choices for a book form. With id zero the form is
// for a new book and checked decides which genres are marked.
func (svc *Service) RetrieveForm(ctx context.Context, id int, checked []int) (*Form, error) {
	g := fanout.New(ctx, svc.FanoutOptions())
	if id != 0 {
		g.Go("book", func(ctx context.Context) (any, error) {
			return svc.Retrieve(ctx, id)
		})
	}
	g.Go("authors", func(ctx context.Context) (any, error) {
		return store.FindAll[*models.Author](ctx, svc.Store(), models.KindAuthor, store.Query{
			Sort: []store.Sort{store.Asc("family_name")},
		})
	})
	g.Go("genres", func(ctx context.Context) (any, error) {
		return store.FindAll[*models.Genre](ctx, svc.Store(), models.KindGenre, store.Query{
			Sort: []store.Sort{store.Asc("name")},
		})
	})

	res, err := g.Wait()
	if err != nil {
		return nil, err
	}

	form := &Form{
		Book:    fanout.Value[*models.Book](res, "book"),
		Authors: fanout.Value[[]*models.Author](res, "authors"),
	}
	if form.Book != nil {
		checked = form.Book.GenreIDs
	}
	marked := make(map[int]bool, len(checked))
	for _, id := range checked {
		marked[id] = true
	}
	for _, genre := range fanout.Value[[]*models.Genre](res, "genres") {
		form.Genres = append(form.Genres, GenreChoice{Genre: genre, Checked: marked[genre.ID]})
	}
	return form, nil
}

// FormOptions marks the genres a rejected submission had chosen. Entries
// that aren't ids can't match any genre and are skipped.
func (svc *Service) FormOptions(ctx context.Context, in pipeline.Input) (map[string]any, error) {
	var checked []int
	for _, s := range in.List("genre") {
		if id, err := strconv.Atoi(s); err == nil {
			checked = append(checked, id)
		}
	}
	form, err := svc.RetrieveForm(ctx, 0, checked)
	if err != nil {
		return nil, err
	}
	return form.options(), nil
}

func (f *Form) options() map[string]any {
	genres := make([]*catalog.View, 0, len(f.Genres))
	for _, choice := range f.Genres {
		genres = append(genres, catalog.NewView(choice.Genre).With("checked", choice.Checked))
	}
	return map[string]any{
		"authors": catalog.Views(f.Authors),
		"genres":  genres,
	}
}
