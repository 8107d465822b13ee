package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

const (
	collectionBooks = "books"

	indexISBN = "uniq_isbn"
)

// sortColumns maps catalog sort fields to document keys.
var sortColumns = map[domain.SortField]string{
	domain.SortByID:              "_id",
	domain.SortByTitle:           "title",
	domain.SortByAuthor:          "author",
	domain.SortByPublicationDate: "published_date",
	domain.SortByGenre:           "genre",
	domain.SortByPrice:           "price",
	domain.SortByISBN:            "isbn",
}

// BookRepository implements ports.BookRepository using MongoDB.
type BookRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{db: db, col: db.Collection(collectionBooks)}
}

type mongoBook struct {
	ID            int64                `bson:"_id"`
	Title         string               `bson:"title"`
	Author        string               `bson:"author"`
	PublishedDate time.Time            `bson:"published_date"`
	Genre         string               `bson:"genre"`
	Price         primitive.Decimal128 `bson:"price"`
	ISBN          string               `bson:"isbn"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

func toMongoBook(b *domain.Book) (mongoBook, error) {
	price, err := primitive.ParseDecimal128(domain.FormatPrice(b.Price))
	if err != nil {
		return mongoBook{}, fmt.Errorf("encode price: %w", err)
	}
	return mongoBook{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		PublishedDate: b.PublishedDate.UTC(),
		Genre:         b.Genre,
		Price:         price,
		ISBN:          b.ISBN,
		CreatedAt:     b.CreatedAt.UTC(),
		UpdatedAt:     b.UpdatedAt.UTC(),
	}, nil
}

func (mb mongoBook) toDomain() (*domain.Book, error) {
	price, ok := domain.ParsePrice(mb.Price.String())
	if !ok {
		return nil, fmt.Errorf("decode price of book %d: %q", mb.ID, mb.Price.String())
	}
	return &domain.Book{
		ID:            mb.ID,
		Title:         mb.Title,
		Author:        mb.Author,
		PublishedDate: mb.PublishedDate.UTC(),
		Genre:         mb.Genre,
		Price:         price,
		ISBN:          mb.ISBN,
		CreatedAt:     mb.CreatedAt.UTC(),
		UpdatedAt:     mb.UpdatedAt.UTC(),
	}, nil
}

// Create inserts a new book document with the next sequence id.
func (r *BookRepository) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoBook(book)
	if err != nil {
		return nil, err
	}
	if doc.ID, err = nextID(ctx, r.db, collectionBooks); err != nil {
		return nil, err
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if duplicateIndex(err, indexISBN) {
			return nil, domain.ErrISBNTaken
		}
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return doc.toDomain()
}

// Update replaces the mutable fields of the book with book.ID.
func (r *BookRepository) Update(ctx context.Context, book *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoBook(book)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"title":          doc.Title,
		"author":         doc.Author,
		"published_date": doc.PublishedDate,
		"genre":          doc.Genre,
		"price":          doc.Price,
		"isbn":           doc.ISBN,
		"updated_at":     doc.UpdatedAt,
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": book.ID}, update)
	if err != nil {
		if duplicateIndex(err, indexISBN) {
			return domain.ErrISBNTaken
		}
		return fmt.Errorf("update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// FindByID retrieves a book by its numeric id.
func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mb mongoBook
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&mb); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return mb.toDomain()
}

func (r *BookRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, bson.M{"_id": id})
}

func (r *BookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	return r.exists(ctx, bson.M{"isbn": isbn})
}

func (r *BookRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := exists(ctx, r.col, filter)
	if err != nil {
		return false, fmt.Errorf("book exists: %w", err)
	}
	return ok, nil
}

// FindPage returns one sorted page and the total number of books. Ties on
// the sort key are broken by _id so pages never overlap.
func (r *BookRepository) FindPage(ctx context.Context, req domain.PageRequest) ([]*domain.Book, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	opts := options.Find().
		SetSort(sortDocument(req)).
		SetSkip(req.Offset()).
		SetLimit(int64(req.Size))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoBook
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode books: %w", err)
	}

	items := make([]*domain.Book, 0, len(docs))
	for _, d := range docs {
		b, err := d.toDomain()
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func sortDocument(req domain.PageRequest) bson.D {
	col, ok := sortColumns[req.SortField]
	if !ok {
		col = sortColumns[domain.SortByTitle]
	}
	dir := 1
	if req.Direction == domain.SortDesc {
		dir = -1
	}
	sort := bson.D{{Key: col, Value: dir}}
	if col != "_id" {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}

func (r *BookRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the ISBN unique index and the sort indexes.
func (r *BookRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: options.Index().SetName(indexISBN).SetUnique(true)},
		{Keys: bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "published_date", Value: 1}, {Key: "_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
