package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djstrauss/dingertuesday/internal/database"
)

func testRepo(t *testing.T) *ContentRepository {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return NewContentRepository(db.Conn(), testLogger())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Home Run Vulnerability Report — 2025-07-08", "home-run-vulnerability-report-20250708"},
		{"Simple Title", "simple-title"},
		{"  Spaced   Out  ", "spaced-out"},
		{"MiXeD CaSe!", "mixed-case"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Slugify(tt.title), tt.title)
	}
}

func TestCreateAndGetBySlug(t *testing.T) {
	repo := testRepo(t)

	doc := Document{
		Title:   "Daily Report",
		Summary: "a summary",
		Body:    "the body",
		Tags:    []string{"home-runs", "pitchers"},
	}

	id, err := repo.Create(doc, "MLB Analyst")
	require.NoError(t, err)
	assert.Positive(t, id)

	article, err := repo.GetBySlug("daily-report")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, "Daily Report", article.Title)
	assert.Equal(t, "the body", article.Content)
	assert.Equal(t, "home-runs,pitchers", article.Tags)
	assert.Equal(t, "published", article.Status)
}

func TestCreateDeduplicatesSlugs(t *testing.T) {
	repo := testRepo(t)

	doc := Document{Title: "Daily Report", Body: "first"}
	_, err := repo.Create(doc, "MLB Analyst")
	require.NoError(t, err)

	doc.Body = "second"
	_, err = repo.Create(doc, "MLB Analyst")
	require.NoError(t, err)

	doc.Body = "third"
	_, err = repo.Create(doc, "MLB Analyst")
	require.NoError(t, err)

	first, err := repo.GetBySlug("daily-report")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "first", first.Content)

	second, err := repo.GetBySlug("daily-report-1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "second", second.Content)

	third, err := repo.GetBySlug("daily-report-2")
	require.NoError(t, err)
	require.NotNil(t, third)
	assert.Equal(t, "third", third.Content)
}

func TestGetBySlugAbsent(t *testing.T) {
	repo := testRepo(t)

	article, err := repo.GetBySlug("nope")
	require.NoError(t, err)
	assert.Nil(t, article)
}

func TestList(t *testing.T) {
	repo := testRepo(t)

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := repo.Create(Document{Title: title, Body: title}, "MLB Analyst")
		require.NoError(t, err)
	}

	articles, err := repo.List(2, 0)
	require.NoError(t, err)
	assert.Len(t, articles, 2)

	rest, err := repo.List(10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
