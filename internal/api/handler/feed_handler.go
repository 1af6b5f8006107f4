package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/core/ports"
	"github.com/socialfeed/gateway/internal/core/service"
)

// ImageStore persists uploaded images and returns their public reference.
type ImageStore interface {
	Accepts(contentType string) bool
	Save(name, contentType string, r io.Reader) (string, error)
}

var errMalformedBody = domain.NewValidationError("body", "request body is malformed")

// FeedHandler handles HTTP requests for post operations.
type FeedHandler struct {
	ops     *service.Operations
	images  ImageStore
	cleaner ports.AssetCleaner
	log     zerolog.Logger
}

func NewFeedHandler(ops *service.Operations, images ImageStore, cleaner ports.AssetCleaner, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{ops: ops, images: images, cleaner: cleaner, log: log}
}

// ListPosts returns one page of the feed.
//
// @Summary      List posts
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number (1-based)"
// @Success      200   {object}  ports.PostPage
// @Failure      401   {object}  resolver.Failure
// @Failure      422   {object}  resolver.Failure
// @Router       /feed/posts [get]
func (h *FeedHandler) ListPosts(c echo.Context, ac domain.AuthContext) error {
	var in ports.ListPostsInput
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return domain.NewValidationError("page", "page must be a number")
		}
		in.Page = page
	}

	page, err := h.ops.ListPosts.Call(c.Request().Context(), ac, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetPost returns a single post.
//
// @Summary      Get post
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string  true  "Post ID"
// @Success      200     {object}  ports.PostView
// @Failure      401     {object}  resolver.Failure
// @Failure      404     {object}  resolver.Failure
// @Router       /feed/post/{postId} [get]
func (h *FeedHandler) GetPost(c echo.Context, ac domain.AuthContext) error {
	post, err := h.ops.GetPost.Call(c.Request().Context(), ac, ports.GetPostInput{ID: c.Param("postId")})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost publishes a new post by the caller. Repeating a request with the
// same Idempotency-Key returns the original post.
//
// @Summary      Create post
// @Tags         feed
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string         false  "Client-generated key for safe retries"
// @Param        body             body      postRequest    false  "Post (JSON)"
// @Param        image            formData  file           false  "Image (png, jpg, jpeg)"
// @Success      201              {object}  ports.PostView
// @Failure      401              {object}  resolver.Failure
// @Failure      422              {object}  resolver.Failure
// @Router       /feed/post [post]
func (h *FeedHandler) CreatePost(c echo.Context, ac domain.AuthContext) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return errMalformedBody
	}
	uploaded, err := h.saveUpload(c, ac)
	if err != nil {
		return err
	}

	in := toCreatePostInput(req, uploaded, c.Request().Header.Get("Idempotency-Key"))
	post, err := h.ops.CreatePost.Call(c.Request().Context(), ac, in)
	if err != nil {
		h.discard(ac, uploaded)
		return err
	}
	if uploaded != "" && post.ImageURL != uploaded {
		// Replayed create: the original post keeps its own image.
		h.discard(ac, uploaded)
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost replaces a post's title and content and, optionally, its image.
//
// @Summary      Update post
// @Tags         feed
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string       true   "Post ID"
// @Param        body    body      postRequest  false  "Post (JSON)"
// @Param        image   formData  file         false  "Replacement image"
// @Success      200     {object}  ports.PostView
// @Failure      401     {object}  resolver.Failure
// @Failure      403     {object}  resolver.Failure
// @Failure      404     {object}  resolver.Failure
// @Failure      422     {object}  resolver.Failure
// @Router       /feed/post/{postId} [put]
func (h *FeedHandler) UpdatePost(c echo.Context, ac domain.AuthContext) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return errMalformedBody
	}
	uploaded, err := h.saveUpload(c, ac)
	if err != nil {
		return err
	}

	post, err := h.ops.UpdatePost.Call(c.Request().Context(), ac, toUpdatePostInput(c.Param("postId"), req, uploaded))
	if err != nil {
		h.discard(ac, uploaded)
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes one of the caller's posts.
//
// @Summary      Delete post
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string  true  "Post ID"
// @Success      200     {object}  ports.DeletedPost
// @Failure      401     {object}  resolver.Failure
// @Failure      403     {object}  resolver.Failure
// @Failure      404     {object}  resolver.Failure
// @Router       /feed/post/{postId} [delete]
func (h *FeedHandler) DeletePost(c echo.Context, ac domain.AuthContext) error {
	deleted, err := h.ops.DeletePost.Call(c.Request().Context(), ac, ports.DeletePostInput{ID: c.Param("postId")})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleted)
}

// saveUpload stores the "image" part of a multipart request. Requests without
// one, and files of an unsupported type, yield an empty reference.
func (h *FeedHandler) saveUpload(c echo.Context, ac domain.AuthContext) (string, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return "", nil
	}
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", errMalformedBody
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if !h.images.Accepts(contentType) {
		h.log.Debug().Str("content_type", contentType).Msg("ignoring upload of unsupported type")
		return "", nil
	}
	if !ac.IsAuthenticated() {
		// Anonymous uploads are never stored. The client file name stands in
		// so the argument record validates the same way; the call then fails
		// authorization.
		return fh.Filename, nil
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ref, err := h.images.Save(fh.Filename, contentType, f)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return ref, nil
}

// discard schedules removal of an image stored by a request that did not
// end up referencing it.
func (h *FeedHandler) discard(ac domain.AuthContext, ref string) {
	if ref != "" && ac.IsAuthenticated() {
		h.cleaner.Schedule(ref)
	}
}
