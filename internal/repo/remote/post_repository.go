// Package remote implements the post repository against the blog backend.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"blog-client/internal/entity"
	"blog-client/internal/imageset"
	"blog-client/pkg/api"
	"blog-client/pkg/logger"
)

type PostRepository interface {
	List(ctx context.Context) ([]entity.Post, error)
	Search(ctx context.Context, query string) ([]entity.Post, error)
	Create(ctx context.Context, fields entity.FormFields, images []imageset.Local) error
	Update(ctx context.Context, id string, fields entity.FormFields, images []imageset.Local) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	client *api.Client
	log    *logger.Logger
}

func NewPostRepository(client *api.Client, log *logger.Logger) PostRepository {
	return &postRepository{
		client: client,
		log:    log,
	}
}

func (r *postRepository) List(ctx context.Context) ([]entity.Post, error) {
	var posts []entity.Post
	if err := r.client.GetJSON(ctx, "posts", nil, &posts); err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string) ([]entity.Post, error) {
	var posts []entity.Post
	q := url.Values{"q": []string{query}}
	if err := r.client.GetJSON(ctx, "posts/search", q, &posts); err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, fields entity.FormFields, images []imageset.Local) error {
	body, contentType, err := encodeForm(fields, images)
	if err != nil {
		return err
	}
	if err := r.client.DoMultipart(ctx, http.MethodPost, "posts", contentType, body, nil); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, id string, fields entity.FormFields, images []imageset.Local) error {
	body, contentType, err := encodeForm(fields, images)
	if err != nil {
		return err
	}
	if err := r.client.DoMultipart(ctx, http.MethodPut, "posts/"+id, contentType, body, nil); err != nil {
		return fmt.Errorf("failed to update post %s: %w", id, err)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, "posts/"+id); err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	return nil
}

// encodeForm builds the multipart submit body: the seven text fields
// followed by one "images" file part per pending local file, in append
// order.
func encodeForm(fields entity.FormFields, images []imageset.Local) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	text := []struct {
		key   string
		value string
	}{
		{"author", fields.Author},
		{"authorEmail", fields.AuthorEmail},
		{"title", fields.Title},
		{"category", fields.Category},
		{"subcategory", fields.Subcategory},
		{"summary", fields.Summary},
		{"description", fields.Description},
	}
	for _, f := range text {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to encode field %s: %w", f.key, err)
		}
	}

	for _, img := range images {
		part, err := createImagePart(w, img)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode image %s: %w", img.Name, err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("failed to encode image %s: %w", img.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func createImagePart(w *multipart.Writer, img imageset.Local) (io.Writer, error) {
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(img.Name)))
	header.Set("Content-Type", contentType)
	return w.CreatePart(header)
}
