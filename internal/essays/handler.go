package essays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardiland/ardilandcom/internal/cache"
	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type essayRepo interface {
	List(ctx context.Context, limit int) ([]*Essay, error)
	Featured(ctx context.Context, limit int) ([]*Essay, error)
	BySlug(ctx context.Context, slug string) (*Essay, error)
	ByID(ctx context.Context, id string) (*Essay, error)
	Create(ctx context.Context, e *Essay) error
	Update(ctx context.Context, e *Essay) error
	Delete(ctx context.Context, id string) error
}

type createEssayRequest struct {
	Slug      string `json:"slug" validate:"omitempty,max=120"`
	Title     string `json:"title" validate:"required,max=300"`
	Summary   string `json:"summary" validate:"required,max=1000"`
	Content   string `json:"content" validate:"required"`
	Format    string `json:"format" validate:"omitempty,oneof=html markdown"`
	Featured  bool   `json:"featured"`
	SortOrder int    `json:"sortOrder"`
}

type updateEssayRequest struct {
	Slug      *string `json:"slug" validate:"omitempty,min=1,max=120"`
	Title     *string `json:"title" validate:"omitempty,min=1,max=300"`
	Summary   *string `json:"summary" validate:"omitempty,min=1,max=1000"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	Format    string  `json:"format" validate:"omitempty,oneof=html markdown"`
	Featured  *bool   `json:"featured"`
	SortOrder *int    `json:"sortOrder"`
}

type Handler struct {
	repo         essayRepo
	renderer     *ContentRenderer
	contentCache cache.Cache
}

func NewHandler(repo essayRepo, renderer *ContentRenderer, contentCache cache.Cache) *Handler {
	return &Handler{
		repo:         repo,
		renderer:     renderer,
		contentCache: contentCache,
	}
}

func (handler *Handler) SetupRoutes(apiRouter, adminRouter *mux.Router) {
	apiRouter.HandleFunc("/essays", handler.handleList).Methods("GET").Name("essays")
	apiRouter.HandleFunc("/essays/featured", handler.handleFeatured).Methods("GET").Name("essays-featured")
	apiRouter.HandleFunc("/essays/{slug}", handler.handleBySlug).Methods("GET").Name("essay-by-slug")

	adminRouter.HandleFunc("/essays", handler.handleAdminList).Methods("GET").Name("admin-essays")
	adminRouter.HandleFunc("/essays", handler.handleCreate).Methods("POST").Name("admin-new-essay")
	adminRouter.HandleFunc("/essays/{id}", handler.handleUpdate).Methods("PUT").Name("admin-update-essay")
	adminRouter.HandleFunc("/essays/{id}", handler.handleDelete).Methods("DELETE").Name("admin-delete-essay")
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	handler.writeCachedList(w, r, "all", "Failed to fetch essays", func(ctx context.Context) ([]*Essay, error) {
		return handler.repo.List(ctx, PublicListLimit)
	})
}

func (handler *Handler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	handler.writeCachedList(w, r, "featured", "Failed to fetch featured essays", func(ctx context.Context) ([]*Essay, error) {
		return handler.repo.Featured(ctx, FeaturedLimit)
	})
}

func (handler *Handler) writeCachedList(
	w http.ResponseWriter,
	r *http.Request,
	cacheKey, failMessage string,
	load func(ctx context.Context) ([]*Essay, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "essaysHandler."+cacheKey)
	defer span.End()

	// generation is read once, a write committed during load must not be cached under the new one
	var gen uint64
	if handler.contentCache != nil {
		gen = handler.contentCache.Generation(cache.KindEssays)
		if cached, found := handler.contentCache.Get(cache.KindEssays, gen, cacheKey); found {
			pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
			return
		}
	}

	list, err := load(ctx)
	if err != nil {
		log.Errorf("get essays [%s]: %s", cacheKey, err)
		span.RecordError(err)
		pkg.WriteInternalError(w, failMessage)
		return
	}

	respBytes, err := json.Marshal(pkg.ApiResponse{Success: true, Data: list})
	if err != nil {
		log.Errorf("marshal essays: %s", err)
		pkg.WriteInternalError(w, failMessage)
		return
	}

	if handler.contentCache != nil {
		handler.contentCache.Set(cache.KindEssays, gen, cacheKey, respBytes)
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
}

func (handler *Handler) handleBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "essaysHandler.bySlug")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	essay, err := handler.repo.BySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrEssayNotFound) {
			pkg.WriteNotFound(w, fmt.Sprintf("Essay with slug %q not found", slug))
			return
		}
		log.Errorf("get essay by slug %s: %s", slug, err)
		pkg.WriteInternalError(w, "Failed to fetch essay")
		return
	}

	pkg.WriteSuccess(w, http.StatusOK, essay)
}

func (handler *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	list, err := handler.repo.List(r.Context(), 0)
	if err != nil {
		log.Errorf("admin, get essays: %s", err)
		pkg.WriteInternalError(w, "Failed to fetch essays")
		return
	}
	pkg.WriteSuccess(w, http.StatusOK, list)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "essaysHandler.create")
	defer span.End()

	var req createEssayRequest
	if err := pkg.DecodeAndValidate(r, &req); err != nil {
		pkg.WriteBadRequest(w, err.Error())
		return
	}

	content, err := handler.renderer.Render(req.Content, req.Format)
	if err != nil {
		pkg.WriteBadRequest(w, err.Error())
		return
	}

	essay := &Essay{
		Slug:      req.Slug,
		Title:     req.Title,
		Summary:   req.Summary,
		Content:   content,
		Featured:  req.Featured,
		SortOrder: req.SortOrder,
	}
	if essay.Slug == "" {
		essay.Slug = pkg.GenerateSlug(essay.Title)
	}
	if essay.Slug == "" {
		pkg.WriteBadRequest(w, "slug cannot be generated from title")
		return
	}

	if err := handler.repo.Create(ctx, essay); err != nil {
		handler.writeWriteError(w, err, "Failed to create essay")
		return
	}

	log.Tracef("new essay %s [%s] added", essay.ID, essay.Slug)
	handler.invalidateCache()
	pkg.WriteSuccess(w, http.StatusCreated, essay)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "essaysHandler.update")
	defer span.End()

	var req updateEssayRequest
	if err := pkg.DecodeAndValidate(r, &req); err != nil {
		pkg.WriteBadRequest(w, err.Error())
		return
	}

	essay, err := handler.repo.ByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		handler.writeWriteError(w, err, "Failed to update essay")
		return
	}

	if req.Content != nil {
		content, err := handler.renderer.Render(*req.Content, req.Format)
		if err != nil {
			pkg.WriteBadRequest(w, err.Error())
			return
		}
		essay.Content = content
	}
	if req.Slug != nil {
		essay.Slug = *req.Slug
	}
	if req.Title != nil {
		essay.Title = *req.Title
	}
	if req.Summary != nil {
		essay.Summary = *req.Summary
	}
	if req.Featured != nil {
		essay.Featured = *req.Featured
	}
	if req.SortOrder != nil {
		essay.SortOrder = *req.SortOrder
	}

	if err := handler.repo.Update(ctx, essay); err != nil {
		handler.writeWriteError(w, err, "Failed to update essay")
		return
	}

	handler.invalidateCache()
	pkg.WriteSuccess(w, http.StatusOK, essay)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := handler.repo.Delete(r.Context(), id); err != nil {
		handler.writeWriteError(w, err, "Failed to delete essay")
		return
	}

	log.Tracef("essay %s deleted", id)
	handler.invalidateCache()
	pkg.WriteSuccess(w, http.StatusOK, nil)
}

func (handler *Handler) writeWriteError(w http.ResponseWriter, err error, failMessage string) {
	switch {
	case errors.Is(err, ErrEssayNotFound):
		pkg.WriteNotFound(w, "Essay not found")
	case errors.Is(err, ErrEssaySlugExists):
		pkg.WriteError(w, http.StatusConflict, pkg.ErrLabelConflict, "An essay with this slug already exists")
	default:
		log.Errorf("%s: %s", failMessage, err)
		pkg.WriteInternalError(w, failMessage)
	}
}

func (handler *Handler) invalidateCache() {
	if handler.contentCache != nil {
		handler.contentCache.Invalidate(cache.KindEssays)
	}
}
