package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	"github.com/AntonStoeckl/library-catalog-go/catalog/service"
)

// commandFlags are the per-command flags. Each action reads only the ones it needs.
type commandFlags struct {
	id       int64
	title    string
	isbn     string
	name     string
	userID   int64
	bookID   int64
	authorID int64
	endDate  string
	store    bool
}

func parseCommandFlags(entity, action string, args []string, stderr io.Writer) (commandFlags, error) {
	var f commandFlags

	fs := flag.NewFlagSet(entity+" "+action, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Int64Var(&f.id, "id", 0, "id of the entity")
	fs.StringVar(&f.title, "title", "", "book title")
	fs.StringVar(&f.isbn, "isbn", "", "book ISBN")
	fs.StringVar(&f.name, "name", "", "author or user name")
	fs.Int64Var(&f.userID, "user", 0, "user id")
	fs.Int64Var(&f.bookID, "book", 0, "book id")
	fs.Int64Var(&f.authorID, "author", 0, "author id")
	fs.StringVar(&f.endDate, "end", "", "loan end date ("+catalog.DateLayout+")")
	fs.BoolVar(&f.store, "store", false, "read relations from the store instead of memory")

	if err := fs.Parse(args); err != nil {
		return commandFlags{}, err
	}

	return f, nil
}

func required(name string, value int64) error {
	if value == 0 {
		return fmt.Errorf("%w: -%s", ErrMissingFlag, name)
	}

	return nil
}

func dispatch(
	ctx context.Context,
	library *service.Library,
	entity, action string,
	args []string,
	stderr io.Writer,
) (any, error) {
	f, err := parseCommandFlags(entity, action, args, stderr)
	if err != nil {
		return nil, err
	}

	switch entity {
	case catalog.BookEntityName:
		return bookCommand(ctx, library.Books, action, f)
	case catalog.AuthorEntityName:
		return authorCommand(ctx, library.Authors, action, f)
	case catalog.UserEntityName:
		return userCommand(ctx, library.Users, action, f)
	case "relation":
		return relationCommand(ctx, library.Relations, action, f)
	case catalog.LoanEntityName:
		return loanCommand(ctx, library.Loans, action, f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
}

func bookCommand(ctx context.Context, books *service.BookService, action string, f commandFlags) (any, error) {
	switch action {
	case "create":
		book, err := books.CreateBook(ctx, f.title, f.isbn)
		return toBookView(book), err
	case "list":
		return mapViews(books.Books(), toBookView), nil
	}

	if err := required("id", f.id); err != nil {
		return nil, err
	}

	switch action {
	case "get":
		book, err := books.FindBookByID(f.id)
		return toBookView(book), err
	case "update":
		book, err := books.UpdateBook(ctx, f.id, f.title, f.isbn)
		return toBookView(book), err
	case "delete":
		return deletedView{ID: f.id}, books.DeleteBook(ctx, f.id)
	default:
		return nil, fmt.Errorf("%w: book %q", ErrUnknownAction, action)
	}
}

func authorCommand(ctx context.Context, authors *service.AuthorService, action string, f commandFlags) (any, error) {
	switch action {
	case "create":
		author, err := authors.CreateAuthor(ctx, f.name)
		return toPersonView(author.ID, author.Name), err
	case "list":
		return mapViews(authors.Authors(), func(a catalog.Author) personView { return toPersonView(a.ID, a.Name) }), nil
	}

	if err := required("id", f.id); err != nil {
		return nil, err
	}

	switch action {
	case "get":
		author, err := authors.FindAuthorByID(f.id)
		return toPersonView(author.ID, author.Name), err
	case "update":
		author, err := authors.UpdateAuthor(ctx, f.id, f.name)
		return toPersonView(author.ID, author.Name), err
	case "delete":
		return deletedView{ID: f.id}, authors.DeleteAuthor(ctx, f.id)
	default:
		return nil, fmt.Errorf("%w: author %q", ErrUnknownAction, action)
	}
}

func userCommand(ctx context.Context, users *service.UserService, action string, f commandFlags) (any, error) {
	switch action {
	case "create":
		user, err := users.CreateUser(ctx, f.name)
		return toPersonView(user.ID, user.Name), err
	case "list":
		return mapViews(users.Users(), func(u catalog.User) personView { return toPersonView(u.ID, u.Name) }), nil
	}

	if err := required("id", f.id); err != nil {
		return nil, err
	}

	switch action {
	case "get":
		user, err := users.FindUserByID(f.id)
		return toPersonView(user.ID, user.Name), err
	case "update":
		user, err := users.UpdateUser(ctx, f.id, f.name)
		return toPersonView(user.ID, user.Name), err
	case "delete":
		return deletedView{ID: f.id}, users.DeleteUser(ctx, f.id)
	default:
		return nil, fmt.Errorf("%w: user %q", ErrUnknownAction, action)
	}
}

func relationCommand(ctx context.Context, relations *service.RelationService, action string, f commandFlags) (any, error) {
	switch action {
	case "create":
		if err := required("book", f.bookID); err != nil {
			return nil, err
		}
		if err := required("author", f.authorID); err != nil {
			return nil, err
		}

		relation, err := relations.CreateBookAuthor(ctx, f.bookID, f.authorID)
		return toRelationView(relation), err

	case "list":
		return mapViews(relations.All(), toRelationView), nil

	case "by-book":
		if err := required("book", f.bookID); err != nil {
			return nil, err
		}

		if f.store {
			found, err := relations.ReadByBookID(ctx, f.bookID)
			return mapViews(found, toRelationView), err
		}

		return mapViews(relations.FindByBookID(f.bookID), toRelationView), nil

	case "by-author":
		if err := required("author", f.authorID); err != nil {
			return nil, err
		}

		if f.store {
			found, err := relations.ReadByAuthorID(ctx, f.authorID)
			return mapViews(found, toRelationView), err
		}

		return mapViews(relations.FindByAuthorID(f.authorID), toRelationView), nil

	case "delete":
		if f.bookID != 0 {
			removed, err := relations.DeleteByBookID(ctx, f.bookID)
			return removedView{Removed: removed}, err
		}
		if err := required("author", f.authorID); err != nil {
			return nil, err
		}

		removed, err := relations.DeleteByAuthorID(ctx, f.authorID)
		return removedView{Removed: removed}, err

	default:
		return nil, fmt.Errorf("%w: relation %q", ErrUnknownAction, action)
	}
}

func loanCommand(ctx context.Context, loans *service.BookingEngine, action string, f commandFlags) (any, error) {
	switch action {
	case "create":
		if err := required("user", f.userID); err != nil {
			return nil, err
		}
		if err := required("book", f.bookID); err != nil {
			return nil, err
		}

		loan, err := loans.CreateLoan(ctx, f.userID, f.bookID)
		return toLoanView(loan), err

	case "list":
		return mapViews(loans.Loans(), toLoanView), nil

	case "by-user":
		if err := required("user", f.userID); err != nil {
			return nil, err
		}

		found, err := loans.FindLoansByUserID(f.userID)
		return mapViews(found, toLoanView), err

	case "by-book":
		if err := required("book", f.bookID); err != nil {
			return nil, err
		}

		found, err := loans.FindLoansByBookID(f.bookID)
		return mapViews(found, toLoanView), err
	}

	if err := required("id", f.id); err != nil {
		return nil, err
	}

	switch action {
	case "get":
		loan, err := loans.FindLoanByID(f.id)
		return toLoanView(loan), err

	case "update":
		change := service.LoanChange{UserID: f.userID, BookID: f.bookID}
		if f.endDate != "" {
			end, err := catalog.ParseDate(f.endDate)
			if err != nil {
				return nil, catalog.Invalid("end", err)
			}
			change.EndDate = end
		}

		loan, err := loans.UpdateLoan(ctx, f.id, change)
		return toLoanView(loan), err

	case "delete":
		return deletedView{ID: f.id}, loans.DeleteLoan(ctx, f.id)

	default:
		return nil, fmt.Errorf("%w: loan %q", ErrUnknownAction, action)
	}
}

type bookView struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	ISBN  string `json:"isbn"`
}

type personView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type relationView struct {
	BookID   int64 `json:"book_id"`
	AuthorID int64 `json:"author_id"`
}

type loanView struct {
	ID        int64  `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	UserID    int64  `json:"user_id"`
	BookID    int64  `json:"book_id"`
}

type deletedView struct {
	ID int64 `json:"deleted"`
}

type removedView struct {
	Removed int `json:"removed"`
}

func toBookView(b catalog.Book) bookView {
	return bookView{ID: b.ID, Title: b.Title, ISBN: b.ISBN}
}

func toPersonView(id catalog.ID, name string) personView {
	return personView{ID: id, Name: name}
}

func toRelationView(r catalog.BookAuthor) relationView {
	return relationView{BookID: r.BookID, AuthorID: r.AuthorID}
}

func toLoanView(l catalog.Loan) loanView {
	return loanView{
		ID:        l.ID,
		StartDate: formatDate(l.StartDate),
		EndDate:   formatDate(l.EndDate),
		UserID:    l.UserID,
		BookID:    l.BookID,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return catalog.FormatDate(t)
}

func mapViews[T, V any](items []T, toView func(T) V) []V {
	views := make([]V, 0, len(items))
	for _, item := range items {
		views = append(views, toView(item))
	}

	return views
}
