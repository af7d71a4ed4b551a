package bookinstances

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type ListBookInstancesOptions struct {
	Status *string
	BookID *int
}

type Service struct {
	*catalog.Resource[*models.BookInstance]
}

func NewService(s store.Store, p *pipeline.Pipeline, opts fanout.Options) *Service {
	return &Service{catalog.New(s, p, opts, Definition())}
}

// Definition describes book copies to the catalog. Nothing references a
// copy, so deletes are never blocked.
func Definition() catalog.Definition[*models.BookInstance] {
	return catalog.Definition[*models.BookInstance]{
		Kind:   models.KindBookInstance,
		Schema: schema,
		Build:  build,
	}
}

// build fills the defaults: a copy with no status is in maintenance and one
// with no due date is due now.
func build(v pipeline.Values) (*models.BookInstance, error) {
	bookID, err := v.Int("book")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	dueBack, err := v.Date("due_back")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	bi := &models.BookInstance{
		BookID:  bookID,
		Imprint: v.String("imprint"),
		Status:  v.String("status"),
	}
	if bi.Status == "" {
		bi.Status = models.BookInstanceStatusMaintenance
	}
	if dueBack != nil {
		bi.DueBack = *dueBack
	} else {
		bi.DueBack = time.Now().UTC()
	}
	return bi, nil
}

// ListBookInstances returns copies in id order, each with its book expanded.
func (svc *Service) ListBookInstances(ctx context.Context, opts ListBookInstancesOptions) ([]*models.BookInstance, error) {
	filter := store.Filter{}
	if opts.Status != nil {
		filter["status"] = *opts.Status
	}
	if opts.BookID != nil {
		filter["book"] = *opts.BookID
	}

	instances, err := svc.List(ctx, store.Query{Filter: filter, Sort: []store.Sort{store.Asc("id")}})
	if err != nil {
		return nil, err
	}

	bookIDs := make([]int, 0, len(instances))
	seen := map[int]bool{}
	for _, bi := range instances {
		if !seen[bi.BookID] {
			seen[bi.BookID] = true
			bookIDs = append(bookIDs, bi.BookID)
		}
	}
	books, err := store.FindAll[*models.Book](ctx, svc.Store(), models.KindBook, store.Query{
		Filter: store.Filter{"id": bookIDs},
		Fields: []string{"id", "title"},
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	for _, bi := range instances {
		bi.Book = byID[bi.BookID]
	}
	return instances, nil
}

// RetrieveDetail loads a copy with its book expanded. Book is nil when the
// referenced book no longer exists.
func (svc *Service) RetrieveDetail(ctx context.Context, id int) (*models.BookInstance, error) {
	bi, err := svc.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	book, err := store.Find[*models.Book](ctx, svc.Store(), models.KindBook, bi.BookID)
	if err != nil && !errcodes.IsNotFound(err) {
		return nil, err
	}
	bi.Book = book
	return bi, nil
}

// Form is what a copy form offers: every book, and the valid statuses.
type Form struct {
	Instance *models.BookInstance
	Books    []*models.Book
	// Selected is the book the form has chosen, if any.
	Selected string
}

// RetrieveForm loads the choices for a copy form. With id zero the form is
// for a new copy.
func (svc *Service) RetrieveForm(ctx context.Context, id int, selected string) (*Form, error) {
	g := fanout.New(ctx, svc.FanoutOptions())
	if id != 0 {
		g.Go("bookinstance", func(ctx context.Context) (any, error) {
			return svc.Retrieve(ctx, id)
		})
	}
	g.Go("books", func(ctx context.Context) (any, error) {
		return store.FindAll[*models.Book](ctx, svc.Store(), models.KindBook, store.Query{
			Fields: []string{"id", "title"},
			Sort:   []store.Sort{store.Asc("title")},
		})
	})

	res, err := g.Wait()
	if err != nil {
		return nil, err
	}

	form := &Form{
		Instance: fanout.Value[*models.BookInstance](res, "bookinstance"),
		Books:    fanout.Value[[]*models.Book](res, "books"),
		Selected: selected,
	}
	if form.Instance != nil {
		form.Selected = strconv.Itoa(form.Instance.BookID)
	}
	return form, nil
}

func (svc *Service) FormOptions(ctx context.Context, in pipeline.Input) (map[string]any, error) {
	selected := ""
	if books := in.List("book"); len(books) > 0 {
		selected = strings.TrimSpace(books[0])
	}
	form, err := svc.RetrieveForm(ctx, 0, selected)
	if err != nil {
		return nil, err
	}
	return form.options(), nil
}

func (f *Form) options() map[string]any {
	books := make([]*catalog.View, 0, len(f.Books))
	for _, b := range f.Books {
		books = append(books, catalog.NewView(b).With("selected", strconv.Itoa(b.ID) == f.Selected))
	}
	return map[string]any{
		"books":    books,
		"statuses": models.BookInstanceStatuses,
	}
}
