package entrymeta

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eringen/entrymeta/templatetags"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// timeLayout stores times in UTC at second granularity.
const timeLayout = "2006-01-02 15:04:05"

// Store wraps a SQLite database holding posts, authors, terms, custom fields
// and images.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Per-connection pragmas go in the DSN so every pooled connection gets
	// them; busy_timeout makes writers wait instead of failing with SQLITE_BUSY.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS authors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    filename TEXT NOT NULL UNIQUE,
    thumb_filename TEXT NOT NULL DEFAULT '',
    original_name TEXT NOT NULL DEFAULT '',
    alt TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    thumb_width INTEGER NOT NULL DEFAULT 0,
    thumb_height INTEGER NOT NULL DEFAULT 0,
    size INTEGER NOT NULL DEFAULT 0,
    uploaded_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'post',
    content TEXT NOT NULL DEFAULT '',
    content_format TEXT NOT NULL DEFAULT 'html',
    author_id INTEGER REFERENCES authors(id),
    published_at TEXT NOT NULL,
    modified_at TEXT NOT NULL,
    password TEXT NOT NULL DEFAULT '',
    comments_open INTEGER NOT NULL DEFAULT 1,
    comment_count INTEGER NOT NULL DEFAULT 0,
    thumbnail_id INTEGER REFERENCES images(id) ON DELETE SET NULL,
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taxonomy TEXT NOT NULL,
    slug TEXT NOT NULL,
    name TEXT NOT NULL,
    UNIQUE (taxonomy, slug)
);
CREATE TABLE IF NOT EXISTS term_relationships (
    post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    term_id INTEGER NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    PRIMARY KEY (post_id, term_id)
);
CREATE TABLE IF NOT EXISTS postmeta (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    meta_key TEXT NOT NULL,
    meta_value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS postmeta_post ON postmeta (post_id, meta_key);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE posts ADD COLUMN content_format TEXT NOT NULL DEFAULT 'html';`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

// SaveAuthor upserts an author and returns its id.
func (s *Store) SaveAuthor(slug, displayName string) (int64, error) {
	if _, err := s.db.Exec(`INSERT INTO authors (slug, display_name) VALUES (?, ?)
		ON CONFLICT (slug) DO UPDATE SET display_name = excluded.display_name`, slug, displayName); err != nil {
		return 0, fmt.Errorf("save author %q: %w", slug, err)
	}
	var id int64
	err := s.db.QueryRow(`SELECT id FROM authors WHERE slug = ?`, slug).Scan(&id)
	return id, err
}

// GetAuthor returns an author by slug.
func (s *Store) GetAuthor(slug string) (templatetags.Author, error) {
	a := templatetags.Author{Slug: slug}
	err := s.db.QueryRow(`SELECT id, display_name FROM authors WHERE slug = ?`, slug).Scan(&a.ID, &a.DisplayName)
	if err != nil {
		return templatetags.Author{}, err
	}
	a.PostsURL = AuthorURL(slug)
	return a, nil
}

// GetTerm returns a term by taxonomy and slug.
func (s *Store) GetTerm(taxonomy, slug string) (templatetags.Term, error) {
	t := templatetags.Term{Taxonomy: taxonomy, Slug: slug}
	err := s.db.QueryRow(`SELECT name FROM terms WHERE taxonomy = ? AND slug = ?`, taxonomy, slug).Scan(&t.Name)
	if err != nil {
		return templatetags.Term{}, err
	}
	t.URL = TermURL(taxonomy, slug)
	return t, nil
}

// SavePost upserts a post by slug and replaces its terms and custom fields.
func (s *Store) SavePost(in PostInput) (int64, error) {
	if in.Slug == "" {
		return 0, fmt.Errorf("save post: slug is required")
	}
	if in.Type == "" {
		in.Type = templatetags.TypePost
	}
	if in.ContentFormat == "" {
		in.ContentFormat = templatetags.FormatHTML
	}
	if in.PublishedAt.IsZero() {
		in.PublishedAt = time.Now()
	}
	if in.ModifiedAt.IsZero() {
		in.ModifiedAt = in.PublishedAt
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var authorID sql.NullInt64
	if in.AuthorSlug != "" {
		if err := tx.QueryRow(`SELECT id FROM authors WHERE slug = ?`, in.AuthorSlug).Scan(&authorID.Int64); err != nil {
			return 0, fmt.Errorf("save post %q: author %q: %w", in.Slug, in.AuthorSlug, err)
		}
		authorID.Valid = true
	}

	_, err = tx.Exec(`INSERT INTO posts (slug, title, type, content, content_format, author_id, published_at, modified_at, password, comments_open, comment_count, published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			title = excluded.title, type = excluded.type, content = excluded.content,
			content_format = excluded.content_format,
			author_id = excluded.author_id, published_at = excluded.published_at,
			modified_at = excluded.modified_at, password = excluded.password,
			comments_open = excluded.comments_open, comment_count = excluded.comment_count,
			published = excluded.published`,
		in.Slug, in.Title, in.Type, in.Content, in.ContentFormat, authorID,
		in.PublishedAt.UTC().Format(timeLayout), in.ModifiedAt.UTC().Format(timeLayout),
		in.Password, boolInt(in.CommentsOpen), in.CommentCount, boolInt(in.Published))
	if err != nil {
		return 0, fmt.Errorf("save post %q: %w", in.Slug, err)
	}
	var postID int64
	if err := tx.QueryRow(`SELECT id FROM posts WHERE slug = ?`, in.Slug).Scan(&postID); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`DELETE FROM term_relationships WHERE post_id = ?`, postID); err != nil {
		return 0, err
	}
	for taxonomy, names := range in.Terms {
		for pos, name := range FilterEmpty(names) {
			termID, err := ensureTerm(tx, taxonomy, name)
			if err != nil {
				return 0, err
			}
			if _, err := tx.Exec(`INSERT OR IGNORE INTO term_relationships (post_id, term_id, position) VALUES (?, ?, ?)`,
				postID, termID, pos); err != nil {
				return 0, err
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM postmeta WHERE post_id = ?`, postID); err != nil {
		return 0, err
	}
	for key, values := range in.Meta {
		for _, v := range values {
			if _, err := tx.Exec(`INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)`, postID, key, v); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return postID, nil
}

func ensureTerm(tx *sql.Tx, taxonomy, name string) (int64, error) {
	slug := Slugify(name)
	if slug == "" {
		return 0, fmt.Errorf("term %q has an empty slug", name)
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO terms (taxonomy, slug, name) VALUES (?, ?, ?)`, taxonomy, slug, name); err != nil {
		return 0, err
	}
	var id int64
	err := tx.QueryRow(`SELECT id FROM terms WHERE taxonomy = ? AND slug = ?`, taxonomy, slug).Scan(&id)
	return id, err
}

// RenamePost changes the slug of a post, keeping its id, terms and image.
func (s *Store) RenamePost(from, to string) error {
	res, err := s.db.Exec(`UPDATE posts SET slug = ? WHERE slug = ?`, to, from)
	if err != nil {
		return fmt.Errorf("rename post %q: %w", from, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetThumbnail attaches an image to a post as its featured image.
func (s *Store) SetThumbnail(slug string, imageID int64) error {
	res, err := s.db.Exec(`UPDATE posts SET thumbnail_id = ? WHERE slug = ?`, imageID, slug)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const postSelect = `SELECT p.id, p.slug, p.title, p.type, p.content, p.content_format, p.published_at, p.modified_at,
	p.password <> '', p.comments_open, p.comment_count, COALESCE(p.thumbnail_id, 0), p.published,
	COALESCE(a.id, 0), COALESCE(a.slug, ''), COALESCE(a.display_name, '')
	FROM posts p LEFT JOIN authors a ON a.id = p.author_id`

type rowScanner interface {
	Scan(dest ...any) error
}

type postRow struct {
	post    templatetags.Post
	thumbID int64
}

func scanPost(sc rowScanner) (postRow, error) {
	var r postRow
	p := &r.post
	var published, modified string
	var protected, open, pub bool
	if err := sc.Scan(&p.ID, &p.Slug, &p.Title, &p.Type, &p.Content, &p.ContentFormat, &published, &modified,
		&protected, &open, &p.Comments.Count, &r.thumbID, &pub,
		&p.Author.ID, &p.Author.Slug, &p.Author.DisplayName); err != nil {
		return postRow{}, err
	}
	var err error
	if p.PublishedAt, err = time.ParseInLocation(timeLayout, published, time.UTC); err != nil {
		return postRow{}, fmt.Errorf("post %q: published_at: %w", p.Slug, err)
	}
	if p.ModifiedAt, err = time.ParseInLocation(timeLayout, modified, time.UTC); err != nil {
		return postRow{}, fmt.Errorf("post %q: modified_at: %w", p.Slug, err)
	}
	p.PasswordProtected = protected
	p.Comments.Open = open
	p.Published = pub
	p.Attachment = p.Type == templatetags.TypeAttachment
	p.Permalink = Permalink(p.Type, p.Slug)
	if p.Author.Slug != "" {
		p.Author.PostsURL = AuthorURL(p.Author.Slug)
	}
	return r, nil
}

// hydrate loads the terms, custom fields and thumbnail of a scanned post.
func (s *Store) hydrate(r postRow) (templatetags.Post, error) {
	p := r.post
	rows, err := s.db.Query(`SELECT t.taxonomy, t.name, t.slug FROM term_relationships r
		JOIN terms t ON t.id = r.term_id WHERE r.post_id = ? ORDER BY r.position`, p.ID)
	if err != nil {
		return p, err
	}
	p.Terms = make(map[string][]templatetags.Term)
	for rows.Next() {
		var t templatetags.Term
		if err := rows.Scan(&t.Taxonomy, &t.Name, &t.Slug); err != nil {
			rows.Close()
			return p, err
		}
		t.URL = TermURL(t.Taxonomy, t.Slug)
		p.Terms[t.Taxonomy] = append(p.Terms[t.Taxonomy], t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return p, err
	}

	rows, err = s.db.Query(`SELECT meta_key, meta_value FROM postmeta WHERE post_id = ? ORDER BY id`, p.ID)
	if err != nil {
		return p, err
	}
	p.Meta = make(map[string][]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return p, err
		}
		p.Meta[k] = append(p.Meta[k], v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return p, err
	}

	if r.thumbID != 0 {
		img, err := s.imageByID(r.thumbID)
		switch {
		case err == nil:
			p.Thumbnail = img.templateImage()
		case !errors.Is(err, ErrNotFound):
			return p, err
		}
	}
	return p, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]templatetags.Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	var scanned []postRow
	for rows.Next() {
		r, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		scanned = append(scanned, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	posts := make([]templatetags.Post, 0, len(scanned))
	for _, r := range scanned {
		p, err := s.hydrate(r)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// ListPosts returns published posts matching f, newest first.
func (s *Store) ListPosts(f ListFilter) ([]templatetags.Post, error) {
	var where []string
	var args []any
	where = append(where, "p.published = 1")
	if f.Type != "" {
		where = append(where, "p.type = ?")
		args = append(args, f.Type)
	}
	if f.AuthorSlug != "" {
		where = append(where, "a.slug = ?")
		args = append(args, f.AuthorSlug)
	}
	switch {
	case f.Taxonomy != "" && f.TermSlug != "":
		where = append(where, `EXISTS (SELECT 1 FROM term_relationships r JOIN terms t ON t.id = r.term_id
			WHERE r.post_id = p.id AND t.taxonomy = ? AND t.slug = ?)`)
		args = append(args, f.Taxonomy, f.TermSlug)
	case f.Taxonomy != "":
		where = append(where, `EXISTS (SELECT 1 FROM term_relationships r JOIN terms t ON t.id = r.term_id
			WHERE r.post_id = p.id AND t.taxonomy = ?)`)
		args = append(args, f.Taxonomy)
	}
	q := postSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY p.published_at DESC, p.id DESC"
	return s.queryPosts(q, args...)
}

// ListAllPosts returns every post (published and drafts), newest first.
func (s *Store) ListAllPosts() ([]templatetags.Post, error) {
	return s.queryPosts(postSelect + " ORDER BY p.published_at DESC, p.id DESC")
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (templatetags.Post, error) {
	return s.getPost(postSelect+" WHERE p.slug = ? AND p.published = 1", slug)
}

// GetPostAny returns a post by slug regardless of published status (for admin).
func (s *Store) GetPostAny(slug string) (templatetags.Post, error) {
	return s.getPost(postSelect+" WHERE p.slug = ?", slug)
}

func (s *Store) getPost(query, slug string) (templatetags.Post, error) {
	r, err := scanPost(s.db.QueryRow(query, slug))
	if err != nil {
		return templatetags.Post{}, err
	}
	return s.hydrate(r)
}

// PostPassword returns the stored password of a post, "" when unprotected.
func (s *Store) PostPassword(slug string) (string, error) {
	var pw string
	err := s.db.QueryRow(`SELECT password FROM posts WHERE slug = ?`, slug).Scan(&pw)
	return pw, err
}

// CheckPassword reports whether password unlocks the post.
func (s *Store) CheckPassword(slug, password string) (bool, error) {
	pw, err := s.PostPassword(slug)
	if err != nil {
		return false, err
	}
	if pw == "" {
		return true, nil
	}
	return subtle.ConstantTimeCompare([]byte(pw), []byte(password)) == 1, nil
}

// DeletePost removes a post by slug.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// SaveImage inserts image metadata and returns its id.
func (s *Store) SaveImage(img Image) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO images (filename, thumb_filename, original_name, alt, width, height, thumb_width, thumb_height, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.Filename, img.ThumbFilename, img.OriginalName, img.Alt, img.Width, img.Height,
		img.ThumbWidth, img.ThumbHeight, img.Size, img.UploadedAt)
	if err != nil {
		return 0, fmt.Errorf("save image %q: %w", img.Filename, err)
	}
	return res.LastInsertId()
}

const imageSelect = `SELECT id, filename, thumb_filename, original_name, alt, width, height, thumb_width, thumb_height, size, uploaded_at FROM images`

func scanImage(sc rowScanner) (Image, error) {
	var img Image
	err := sc.Scan(&img.ID, &img.Filename, &img.ThumbFilename, &img.OriginalName, &img.Alt,
		&img.Width, &img.Height, &img.ThumbWidth, &img.ThumbHeight, &img.Size, &img.UploadedAt)
	return img, err
}

func (s *Store) imageByID(id int64) (Image, error) {
	return scanImage(s.db.QueryRow(imageSelect+` WHERE id = ?`, id))
}

// ImageExists reports whether an image or its variant already uses filename.
func (s *Store) ImageExists(filename string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM images WHERE filename = ? OR thumb_filename = ?`, filename, filename).Scan(&n)
	return n > 0, err
}

// ListImages returns all images, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(imageSelect + ` ORDER BY uploaded_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes image metadata by filename. Posts using it lose their
// featured image.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
