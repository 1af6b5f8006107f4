package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/domain"
)

type stubImages struct {
	saved []string
}

func (s *stubImages) Accepts(contentType string) bool { return contentType == "image/png" }

func (s *stubImages) Save(name, _ string, r io.Reader) (string, error) {
	_, _ = io.ReadAll(r)
	ref := "images/fixed-" + name
	s.saved = append(s.saved, ref)
	return ref, nil
}

func TestFeedHandler_ListPosts_BadPage(t *testing.T) {
	ops, _ := newOperations(t)
	h := NewFeedHandler(ops, &stubImages{}, &recordingCleaner{}, zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/feed/posts?page=two", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.ListPosts(c, domain.Authenticated("someone"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func multipartContext(method, path, title, content string) echo.Context {
	body := "--b\r\n" +
		"Content-Disposition: form-data; name=\"title\"\r\n\r\n" + title + "\r\n" +
		"--b\r\n" +
		"Content-Disposition: form-data; name=\"content\"\r\n\r\n" + content + "\r\n" +
		"--b\r\n" +
		"Content-Disposition: form-data; name=\"image\"; filename=\"a.png\"\r\n" +
		"Content-Type: image/png\r\n\r\npng\r\n" +
		"--b--\r\n"
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "multipart/form-data; boundary=b")
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFeedHandler_CreatePost_AnonymousSkipsUpload(t *testing.T) {
	ops, _ := newOperations(t)
	images := &stubImages{}
	cleaner := &recordingCleaner{}
	h := NewFeedHandler(ops, images, cleaner, zerolog.Nop())

	c := multipartContext(http.MethodPost, "/feed/post", "Hello world", "First post")
	if err := h.CreatePost(c, domain.Anonymous()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if len(images.saved) != 0 || len(cleaner.refs) != 0 {
		t.Errorf("saved = %v, discarded = %v", images.saved, cleaner.refs)
	}
}

func TestFeedHandler_AnonymousInvalidInputIsValidatedFirst(t *testing.T) {
	ops, _ := newOperations(t)
	images := &stubImages{}
	h := NewFeedHandler(ops, images, &recordingCleaner{}, zerolog.Nop())

	c, _ := jsonContext(http.MethodPost, "/feed/post", `{"title":"x"}`)
	if err := h.CreatePost(c, domain.Anonymous()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("create: expected invalid input, got %v", err)
	}

	c = multipartContext(http.MethodPut, "/feed/post/abc", "Hi", "x")
	c.SetParamNames("postId")
	c.SetParamValues("abc")
	if err := h.UpdatePost(c, domain.Anonymous()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("update: expected invalid input, got %v", err)
	}
	if len(images.saved) != 0 {
		t.Errorf("saved = %v", images.saved)
	}
}

func TestFeedHandler_CreatePost_FailureDiscardsUpload(t *testing.T) {
	ops, _ := newOperations(t)
	images := &stubImages{}
	cleaner := &recordingCleaner{}
	h := NewFeedHandler(ops, images, cleaner, zerolog.Nop())

	c := multipartContext(http.MethodPost, "/feed/post", "Hi", "First post")

	// "Hi" is too short, so the stored image is never referenced.
	err := h.CreatePost(c, domain.Authenticated("someone"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(images.saved) != 1 || len(cleaner.refs) != 1 || cleaner.refs[0] != images.saved[0] {
		t.Errorf("saved = %v, discarded = %v", images.saved, cleaner.refs)
	}
}
