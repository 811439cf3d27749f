package products

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

type productRepo interface {
	All(ctx context.Context) ([]*Product, error)
	Featured(ctx context.Context, limit int) ([]*Product, error)
	BySlug(ctx context.Context, slug string) (*Product, error)
	ByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

type createProductRequest struct {
	Slug         string   `json:"slug" validate:"omitempty,max=120"`
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required"`
	Status       string   `json:"status" validate:"omitempty,oneof=live beta in-progress experiment"`
	Why          string   `json:"why"`
	Problem      string   `json:"problem"`
	CurrentState string   `json:"currentState"`
	Next         string   `json:"next"`
	CtaLabel     *string  `json:"ctaLabel" validate:"omitempty,max=100"`
	CtaURL       *string  `json:"ctaUrl" validate:"omitempty,url"`
	GithubURL    *string  `json:"githubUrl" validate:"omitempty,url"`
	DemoURL      *string  `json:"demoUrl" validate:"omitempty,url"`
	Featured     bool     `json:"featured"`
	SortOrder    int      `json:"sortOrder"`
	IconInitials *string  `json:"iconInitials" validate:"omitempty,max=4"`
	IconColor    *string  `json:"iconColor" validate:"omitempty,max=32"`
	Image        *string  `json:"image"`
	Screenshots  []string `json:"screenshots"`
	TechStack    []string `json:"techStack"`
}

// nil fields are left untouched
type updateProductRequest struct {
	Slug         *string   `json:"slug" validate:"omitempty,min=1,max=120"`
	Name         *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string   `json:"description" validate:"omitempty,min=1"`
	Status       *string   `json:"status" validate:"omitempty,oneof=live beta in-progress experiment"`
	Why          *string   `json:"why"`
	Problem      *string   `json:"problem"`
	CurrentState *string   `json:"currentState"`
	Next         *string   `json:"next"`
	CtaLabel     *string   `json:"ctaLabel" validate:"omitempty,max=100"`
	CtaURL       *string   `json:"ctaUrl" validate:"omitempty,url"`
	GithubURL    *string   `json:"githubUrl" validate:"omitempty,url"`
	DemoURL      *string   `json:"demoUrl" validate:"omitempty,url"`
	Featured     *bool     `json:"featured"`
	SortOrder    *int      `json:"sortOrder"`
	IconInitials *string   `json:"iconInitials" validate:"omitempty,max=4"`
	IconColor    *string   `json:"iconColor" validate:"omitempty,max=32"`
	Image        *string   `json:"image"`
	Screenshots  *[]string `json:"screenshots"`
	TechStack    *[]string `json:"techStack"`
}

type Handler struct {
	repo         productRepo
	contentCache cache.Cache
}

func NewHandler(repo productRepo, contentCache cache.Cache) *Handler {
	return &Handler{
		repo:         repo,
		contentCache: contentCache,
	}
}

// SetupRoutes registers the public routes on apiRouter and the admin routes on adminRouter.
func (handler *Handler) SetupRoutes(apiRouter, adminRouter *mux.Router) {
	apiRouter.HandleFunc("/products", handler.handleAll).Methods("GET").Name("products")
	apiRouter.HandleFunc("/products/featured", handler.handleFeatured).Methods("GET").Name("products-featured")
	apiRouter.HandleFunc("/products/{slug}", handler.handleBySlug).Methods("GET").Name("product-by-slug")

	adminRouter.HandleFunc("/products", handler.handleAdminAll).Methods("GET").Name("admin-products")
	adminRouter.HandleFunc("/products", handler.handleCreate).Methods("POST").Name("admin-new-product")
	adminRouter.HandleFunc("/products/{id}", handler.handleUpdate).Methods("PUT").Name("admin-update-product")
	adminRouter.HandleFunc("/products/{id}", handler.handleDelete).Methods("DELETE").Name("admin-delete-product")
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	handler.writeCachedList(w, r, "all", "Failed to fetch products", handler.repo.All)
}

func (handler *Handler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	handler.writeCachedList(w, r, "featured", "Failed to fetch featured products", func(ctx context.Context) ([]*Product, error) {
		return handler.repo.Featured(ctx, FeaturedLimit)
	})
}

func (handler *Handler) writeCachedList(
	w http.ResponseWriter,
	r *http.Request,
	cacheKey, failMessage string,
	load func(ctx context.Context) ([]*Product, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "productsHandler."+cacheKey)
	defer span.End()

	// generation is read once, a write committed during load must not be cached under the new one
	var gen uint64
	if handler.contentCache != nil {
		gen = handler.contentCache.Generation(cache.KindProducts)
		if cached, found := handler.contentCache.Get(cache.KindProducts, gen, cacheKey); found {
			pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
			return
		}
	}

	products, err := load(ctx)
	if err != nil {
		log.Errorf("get products [%s]: %s", cacheKey, err)
		span.RecordError(err)
		pkg.WriteInternalError(w, failMessage)
		return
	}

	respBytes, err := json.Marshal(pkg.ApiResponse{Success: true, Data: products})
	if err != nil {
		log.Errorf("marshal products: %s", err)
		pkg.WriteInternalError(w, failMessage)
		return
	}

	if handler.contentCache != nil {
		handler.contentCache.Set(cache.KindProducts, gen, cacheKey, respBytes)
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
}

func (handler *Handler) handleBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "productsHandler.bySlug")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	product, err := handler.repo.BySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			pkg.WriteNotFound(w, fmt.Sprintf("Product with slug %q not found", slug))
			return
		}
		log.Errorf("get product by slug %s: %s", slug, err)
		pkg.WriteInternalError(w, "Failed to fetch product")
		return
	}

	pkg.WriteSuccess(w, http.StatusOK, product)
}

func (handler *Handler) handleAdminAll(w http.ResponseWriter, r *http.Request) {
	products, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("admin, get products: %s", err)
		pkg.WriteInternalError(w, "Failed to fetch products")
		return
	}
	pkg.WriteSuccess(w, http.StatusOK, products)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "productsHandler.create")
	defer span.End()

	var req createProductRequest
	if err := pkg.DecodeAndValidate(r, &req); err != nil {
		pkg.WriteBadRequest(w, err.Error())
		return
	}

	product := &Product{
		Slug:         req.Slug,
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		Why:          req.Why,
		Problem:      req.Problem,
		CurrentState: req.CurrentState,
		Next:         req.Next,
		CtaLabel:     req.CtaLabel,
		CtaURL:       req.CtaURL,
		GithubURL:    req.GithubURL,
		DemoURL:      req.DemoURL,
		Featured:     req.Featured,
		SortOrder:    req.SortOrder,
		IconInitials: req.IconInitials,
		IconColor:    req.IconColor,
		Image:        req.Image,
		Screenshots:  req.Screenshots,
		TechStack:    req.TechStack,
	}
	if product.Slug == "" {
		product.Slug = pkg.GenerateSlug(product.Name)
	}
	if product.Slug == "" {
		pkg.WriteBadRequest(w, "slug cannot be generated from name")
		return
	}
	if product.Status == "" {
		product.Status = StatusExperiment
	}

	if err := handler.repo.Create(ctx, product); err != nil {
		handler.writeWriteError(w, err, "Failed to create product")
		return
	}

	log.Tracef("new product %s [%s] added", product.ID, product.Slug)
	handler.invalidateCache()
	pkg.WriteSuccess(w, http.StatusCreated, product)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "productsHandler.update")
	defer span.End()

	var req updateProductRequest
	if err := pkg.DecodeAndValidate(r, &req); err != nil {
		pkg.WriteBadRequest(w, err.Error())
		return
	}

	id := mux.Vars(r)["id"]
	product, err := handler.repo.ByID(ctx, id)
	if err != nil {
		handler.writeWriteError(w, err, "Failed to update product")
		return
	}

	req.applyTo(product)
	if err := handler.repo.Update(ctx, product); err != nil {
		handler.writeWriteError(w, err, "Failed to update product")
		return
	}

	handler.invalidateCache()
	pkg.WriteSuccess(w, http.StatusOK, product)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := handler.repo.Delete(r.Context(), id); err != nil {
		handler.writeWriteError(w, err, "Failed to delete product")
		return
	}

	log.Tracef("product %s deleted", id)
	handler.invalidateCache()
	pkg.WriteSuccess(w, http.StatusOK, nil)
}

func (handler *Handler) writeWriteError(w http.ResponseWriter, err error, failMessage string) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		pkg.WriteNotFound(w, "Product not found")
	case errors.Is(err, ErrProductSlugExists):
		pkg.WriteError(w, http.StatusConflict, pkg.ErrLabelConflict, "A product with this slug already exists")
	default:
		log.Errorf("%s: %s", failMessage, err)
		pkg.WriteInternalError(w, failMessage)
	}
}

func (handler *Handler) invalidateCache() {
	if handler.contentCache != nil {
		handler.contentCache.Invalidate(cache.KindProducts)
	}
}

func (req *updateProductRequest) applyTo(p *Product) {
	setIfPresent(&p.Slug, req.Slug)
	setIfPresent(&p.Name, req.Name)
	setIfPresent(&p.Description, req.Description)
	setIfPresent(&p.Status, req.Status)
	setIfPresent(&p.Why, req.Why)
	setIfPresent(&p.Problem, req.Problem)
	setIfPresent(&p.CurrentState, req.CurrentState)
	setIfPresent(&p.Next, req.Next)
	setIfPresent(&p.Featured, req.Featured)
	setIfPresent(&p.SortOrder, req.SortOrder)
	setIfPresent(&p.Screenshots, req.Screenshots)
	setIfPresent(&p.TechStack, req.TechStack)
	if req.CtaLabel != nil {
		p.CtaLabel = req.CtaLabel
	}
	if req.CtaURL != nil {
		p.CtaURL = req.CtaURL
	}
	if req.GithubURL != nil {
		p.GithubURL = req.GithubURL
	}
	if req.DemoURL != nil {
		p.DemoURL = req.DemoURL
	}
	if req.IconInitials != nil {
		p.IconInitials = req.IconInitials
	}
	if req.IconColor != nil {
		p.IconColor = req.IconColor
	}
	if req.Image != nil {
		p.Image = req.Image
	}
}

func setIfPresent[T any](dst *T, value *T) {
	if value != nil {
		*dst = *value
	}
}
