package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/domain/catalog"
	catalogmod "github.com/example/eshop-backend/modules/catalog"
	"github.com/example/eshop-backend/modules/media"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ListProducts handles GET /products[?categories=a,b].
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	var categories []string
	for _, id := range strings.Split(c.Query("categories"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			categories = append(categories, id)
		}
	}

	products, err := h.catalog.ListProducts(c.UserContext(), categories)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

// GetProduct handles GET /products/:id.
func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	p, err := h.catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// CreateProduct handles POST /products. The image arrives as the multipart
// field "image"; it is stored first and removed again when the product
// cannot be created. A client-supplied image URL is ignored.
func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	in, err := productInput(c)
	if err != nil {
		return writeError(c, err)
	}
	in.Image = ""

	uploaded, err := h.saveFormImage(c, "image")
	if err != nil {
		return writeError(c, err)
	}
	if uploaded != "" {
		in.Image = media.URL(h.baseURL(c), uploaded)
	}

	p, err := h.catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		h.discardUploads(uploaded)
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// UpdateProduct handles PUT /products/:id. Without a new image the current
// one is kept.
func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	in, err := productInput(c)
	if err != nil {
		return writeError(c, err)
	}
	in.Image = ""

	uploaded, err := h.saveFormImage(c, "image")
	if err != nil {
		return writeError(c, err)
	}
	if uploaded != "" {
		in.Image = media.URL(h.baseURL(c), uploaded)
	}

	p, err := h.catalog.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		h.discardUploads(uploaded)
		return writeError(c, err)
	}
	return c.JSON(p)
}

// DeleteProduct handles DELETE /products/:id.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	if err := h.catalog.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return deleted(c, "product")
}

// CountProducts handles GET /products/get/count.
func (h *Handlers) CountProducts(c *fiber.Ctx) error {
	n, err := h.catalog.CountProducts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return counted(c, "productCount", n)
}

// FeaturedProducts handles GET /products/get/featured/:count?.
func (h *Handlers) FeaturedProducts(c *fiber.Ctx) error {
	count, err := intParam(c, "count", 0)
	if err != nil {
		return writeError(c, err)
	}
	products, err := h.catalog.FeaturedProducts(c.UserContext(), count)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

// SetGallery handles PUT /products/gallery-images/:id with up to
// MaxGalleryImages files in the multipart field "images".
func (h *Handlers) SetGallery(c *fiber.Ctx) error {
	if err := apperr.ValidateID(c.Params("id")); err != nil {
		return writeError(c, err)
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["images"]
	}
	if len(files) > catalog.MaxGalleryImages {
		return writeError(c, catalogmod.ErrGalleryTooLarge)
	}

	store, err := h.mediaStore()
	if err != nil && len(files) > 0 {
		return writeError(c, err)
	}

	names := make([]string, 0, len(files))
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := saveFile(c.UserContext(), store, fh)
		if err != nil {
			h.discardUploads(names...)
			return writeError(c, err)
		}
		names = append(names, name)
		urls = append(urls, media.URL(h.baseURL(c), name))
	}

	p, err := h.catalog.SetGallery(c.UserContext(), c.Params("id"), urls)
	if err != nil {
		h.discardUploads(names...)
		return writeError(c, err)
	}
	return c.JSON(p)
}

// ListCategories handles GET /categories.
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(categories)
}

// GetCategory handles GET /categories/:id.
func (h *Handlers) GetCategory(c *fiber.Ctx) error {
	category, err := h.catalog.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(category)
}

// CreateCategory handles POST /categories.
func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	var in catalogmod.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	category, err := h.catalog.CreateCategory(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory handles PUT /categories/:id.
func (h *Handlers) UpdateCategory(c *fiber.Ctx) error {
	var in catalogmod.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	category, err := h.catalog.UpdateCategory(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(category)
}

// DeleteCategory handles DELETE /categories/:id.
func (h *Handlers) DeleteCategory(c *fiber.Ctx) error {
	if err := h.catalog.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return deleted(c, "category")
}

// saveFormImage stores the file in the given form field and returns its
// upload name, or "" when the request carries no such file.
func (h *Handlers) saveFormImage(c *fiber.Ctx, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	store, err := h.mediaStore()
	if err != nil {
		return "", err
	}
	return saveFile(c.UserContext(), store, fh)
}

func saveFile(ctx context.Context, store MediaStore, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: cannot read %s", apperr.ErrInvalidAsset, fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("%w: cannot read %s", apperr.ErrInvalidAsset, fh.Filename)
	}

	upload, err := store.Save(ctx, fh.Filename, fh.Header.Get(fiber.HeaderContentType), data)
	if err != nil {
		return "", err
	}
	return upload.Name, nil
}

// discardUploads removes uploads whose product write failed.
func (h *Handlers) discardUploads(names ...string) {
	store, err := h.mediaStore()
	if err != nil {
		return
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := store.Delete(name); err != nil && !errors.Is(err, media.ErrUploadNotFound) {
			log.Printf("[api] Failed to remove upload %s: %v", name, err)
		}
	}
}

// productInput reads product fields from a JSON body or from form values.
func productInput(c *fiber.Ctx) (catalogmod.ProductInput, error) {
	var in catalogmod.ProductInput
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return in, parseBody(c, &in)
	}

	in.Name = c.FormValue("name")
	in.Description = c.FormValue("description")
	in.RichDescription = c.FormValue("richDescription")
	in.Brand = c.FormValue("brand")
	in.CategoryID = c.FormValue("category")

	var err error
	if in.Price, err = formDecimal(c, "price"); err != nil {
		return in, err
	}
	if in.CountInStock, err = formInt(c, "countInStock"); err != nil {
		return in, err
	}
	if in.NumReviews, err = formInt(c, "numReviews"); err != nil {
		return in, err
	}
	if raw := c.FormValue("rating"); raw != "" {
		if in.Rating, err = strconv.ParseFloat(raw, 64); err != nil {
			return in, fmt.Errorf("%w: rating must be a number", apperr.ErrInvalidArgument)
		}
	}
	if raw := c.FormValue("isFeatured"); raw != "" {
		if in.IsFeatured, err = strconv.ParseBool(raw); err != nil {
			return in, fmt.Errorf("%w: isFeatured must be a boolean", apperr.ErrInvalidArgument)
		}
	}
	return in, nil
}

func formInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.FormValue(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", apperr.ErrInvalidArgument, key)
	}
	return n, nil
}

func formDecimal(c *fiber.Ctx, key string) (decimal.Decimal, error) {
	raw := c.FormValue(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", apperr.ErrInvalidArgument, key)
	}
	return d, nil
}
