package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

// SeedAccount describes a bootstrap user.
type SeedAccount struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// Seeder creates the default accounts and sample catalog on startup. It is
// the only path that creates ADMIN users.
type Seeder struct {
	users    ports.UserRepository
	books    ports.BookRepository
	hasher   ports.PasswordHasher
	accounts []SeedAccount
	log      zerolog.Logger
}

func NewSeeder(users ports.UserRepository, books ports.BookRepository, hasher ports.PasswordHasher, adminPassword, userPassword string, log zerolog.Logger) *Seeder {
	return &Seeder{
		users:  users,
		books:  books,
		hasher: hasher,
		accounts: []SeedAccount{
			{Username: "admin", Email: "admin@bookstore.com", Password: adminPassword, Role: domain.RoleAdmin},
			{Username: "user", Email: "user@bookstore.com", Password: userPassword, Role: domain.RoleUser},
		},
		log: log,
	}
}

// Run is idempotent: existing accounts are left alone and books are only
// added to an empty catalog.
func (s *Seeder) Run(ctx context.Context) error {
	s.log.Info().Msg("initializing sample data")
	for _, acc := range s.accounts {
		if err := s.seedAccount(ctx, acc); err != nil {
			return err
		}
	}
	if err := s.seedBooks(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("sample data initialization completed")
	return nil
}

func (s *Seeder) seedAccount(ctx context.Context, acc SeedAccount) error {
	exists, err := s.users.ExistsByUsername(ctx, acc.Username)
	if err != nil {
		return fmt.Errorf("seed %s: %w", acc.Username, err)
	}
	if exists {
		return nil
	}
	emailTaken, err := s.users.ExistsByEmail(ctx, acc.Email)
	if err != nil {
		return fmt.Errorf("seed %s: %w", acc.Username, err)
	}
	if emailTaken {
		s.log.Warn().Str("username", acc.Username).Str("email", acc.Email).Msg("default account skipped, email already registered")
		return nil
	}

	hash, err := s.hasher.Hash(acc.Password)
	if err != nil {
		return fmt.Errorf("seed %s: %w", acc.Username, err)
	}
	now := time.Now().UTC()
	if _, err := s.users.Create(ctx, &domain.User{
		Username:     acc.Username,
		Email:        acc.Email,
		PasswordHash: hash,
		Role:         acc.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return fmt.Errorf("seed %s: %w", acc.Username, err)
	}
	s.log.Info().Str("username", acc.Username).Str("role", string(acc.Role)).Msg("default account created")
	return nil
}

func (s *Seeder) seedBooks(ctx context.Context) error {
	n, err := s.books.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed books: %w", err)
	}
	if n > 0 {
		return nil
	}

	samples := SampleBooks()
	now := time.Now().UTC()
	for _, b := range samples {
		b.CreatedAt = now
		b.UpdatedAt = now
		if _, err := s.books.Create(ctx, b); err != nil {
			return fmt.Errorf("seed book %s: %w", b.ISBN, err)
		}
	}
	s.log.Info().Int("count", len(samples)).Msg("sample books created")
	return nil
}

// SampleBooks returns the starter catalog.
func SampleBooks() []*domain.Book {
	return []*domain.Book{
		sampleBook("Effective Java", "Joshua Bloch", 2018, 1, 6, "Programming", "32.99", "9780134685991"),
		sampleBook("Clean Code", "Robert C. Martin", 2008, 8, 11, "Programming", "28.99", "9780132350884"),
		sampleBook("Head First Java", "Kathy Sierra & Bert Bates", 2005, 2, 9, "Programming", "25.99", "9780596009205"),
		sampleBook("Spring in Action", "Craig Walls", 2018, 11, 27, "Java Framework", "34.99", "9781617294945"),
		sampleBook("Java: The Complete Reference", "Herbert Schildt", 2021, 5, 15, "Programming", "30.99", "9781260440232"),
		sampleBook("Python Crash Course", "Eric Matthes", 2019, 5, 3, "Programming", "27.99", "9781593279288"),
		sampleBook("Fluent Python", "Luciano Ramalho", 2022, 4, 19, "Programming", "36.99", "9781492056355"),
		sampleBook("Design Patterns: Elements of Reusable Object-Oriented Software", "Erich Gamma", 1994, 10, 31, "Software Design", "39.99", "9780201633610"),
		sampleBook("Building Microservices", "Sam Newman", 2021, 1, 12, "Architecture", "33.99", "9781492034025"),
		sampleBook("Cloud Computing: Principles and Paradigms", "Rajkumar Buyya", 2011, 2, 17, "Cloud Computing", "29.99", "9781118002209"),
	}
}

func sampleBook(title, author string, year int, month time.Month, day int, genre, price, isbn string) *domain.Book {
	p, _ := domain.ParsePrice(price)
	return &domain.Book{
		Title:         title,
		Author:        author,
		PublishedDate: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Genre:         genre,
		Price:         p,
		ISBN:          isbn,
	}
}
