package report

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Article is a persisted editorial piece.
type Article struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags"`
	Author    string    `json:"author"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContentRepository stores articles with slug uniqueness.
type ContentRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *sql.DB, log zerolog.Logger) *ContentRepository {
	return &ContentRepository{
		db:  db,
		log: log.With().Str("repo", "content").Logger(),
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9\s]`)
var whitespace = regexp.MustCompile(`\s+`)

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "")
	slug = whitespace.ReplaceAllString(strings.TrimSpace(slug), "-")
	return slug
}

// Create persists a document as a published article and returns its ID.
// Slug collisions get a numeric suffix rather than an error.
func (r *ContentRepository) Create(doc Document, author string) (int64, error) {
	slug := Slugify(doc.Title)

	base := slug
	for counter := 1; ; counter++ {
		var existing int64
		err := r.db.QueryRow("SELECT id FROM articles WHERE slug = ?", slug).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to check slug %q: %w", slug, err)
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.Exec(`
		INSERT INTO articles (slug, title, summary, content, tags, author, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'published', ?, ?)`,
		slug, doc.Title, doc.Summary, doc.Body, strings.Join(doc.Tags, ","), author, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read article id: %w", err)
	}

	r.log.Info().
		Int64("id", id).
		Str("slug", slug).
		Msg("Article created")

	return id, nil
}

// GetBySlug retrieves a single article, nil when absent.
func (r *ContentRepository) GetBySlug(slug string) (*Article, error) {
	row := r.db.QueryRow(`
		SELECT id, slug, title, summary, content, tags, author, status, created_at, updated_at
		FROM articles WHERE slug = ?`, slug)

	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %q: %w", slug, err)
	}
	return article, nil
}

// List returns published articles, newest first.
func (r *ContentRepository) List(limit, offset int) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT id, slug, title, summary, content, tags, author, status, created_at, updated_at
		FROM articles WHERE status = 'published'
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var createdAt, updatedAt string
	if err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Summary, &a.Content, &a.Tags, &a.Author, &a.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &a, nil
}
