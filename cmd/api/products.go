package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"valuefind/internal/store"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"
)

// listProductsByCategoryHandler godoc
//
//	@Summary		Browse products in a category
//	@Tags			catalog
//	@Produce		json
//	@Param			categoryID	path	int	true	"Category ID"
//	@Success		200			{array}	store.Product
//	@Router			/categories/{categoryID}/products [get]
func (app *application) listProductsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	products, err := app.store.Products.ListByCategory(r.Context(), categoryID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, products); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listMyProductsHandler godoc
//
//	@Summary		List my products
//	@Tags			products
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{array}	store.Product
//	@Router			/store/products [get]
func (app *application) listMyProductsHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	products, err := app.store.Products.ListByOwner(r.Context(), account.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, products); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateProductPayload struct {
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	PricePaise  int64  `json:"price_paise" validate:"required,gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	IsActive    bool   `json:"is_active"`
}

// createProductHandler godoc
//
//	@Summary		Create a product
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		CreateProductPayload	true	"Product details"
//	@Success		201		{object}	store.Product
//	@Failure		400		{object}	error
//	@Router			/store/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	var payload CreateProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product := &store.Product{
		OwnerID:     account.ID,
		CategoryID:  payload.CategoryID,
		Name:        payload.Name,
		Description: payload.Description,
		PricePaise:  payload.PricePaise,
		Stock:       payload.Stock,
		IsActive:    payload.IsActive,
	}

	if err := app.store.Products.Create(r.Context(), product); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProductHandler godoc
//
//	@Summary		Update a product
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			productID	path		int						true	"Product ID"
//	@Param			payload		body		CreateProductPayload	true	"New details"
//	@Success		200			{object}	store.Product
//	@Failure		404			{object}	error
//	@Router			/store/products/{productID} [put]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload CreateProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	product, err := app.ownedProduct(ctx, w, r, productID, account.ID)
	if err != nil {
		return
	}

	product.CategoryID = payload.CategoryID
	product.Name = payload.Name
	product.Description = payload.Description
	product.PricePaise = payload.PricePaise
	product.Stock = payload.Stock
	product.IsActive = payload.IsActive

	if err := app.store.Products.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadProductImageHandler godoc
//
//	@Summary		Upload a product image
//	@Description	Accepts a multipart form with an "image" file, stores it on Cloudinary and appends the URL to the product
//	@Tags			products
//	@Accept			mpfd
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			productID	path		int		true	"Product ID"
//	@Param			image		formData	file	true	"JPEG or PNG image"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	error
//	@Router			/store/products/{productID}/images [post]
func (app *application) uploadProductImageHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	product, err := app.ownedProduct(ctx, w, r, productID, account.ID)
	if err != nil {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		app.badRequestResponse(w, r, errors.New("only jpeg and png images are allowed"))
		return
	}

	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("/%d_%d", product.ID, len(product.ImageURLs)),
		Folder:         "product_images",
		Transformation: "w_800,h_800,c_fill,q_auto",
	}
	uploadResult, err := app.cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Products.AddImageURL(ctx, product.ID, uploadResult.SecureURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"url": uploadResult.SecureURL}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ownedProduct loads the product and verifies ownership, writing the error
// response itself. A non-nil error means the response was already sent.
func (app *application) ownedProduct(ctx context.Context, w http.ResponseWriter, r *http.Request, id int64, ownerID string) (*store.Product, error) {
	product, err := app.store.Products.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return nil, err
	}

	// Other owners' products read as absent rather than forbidden.
	if product.OwnerID != ownerID {
		err := store.ErrNotFound
		app.notFoundResponse(w, r, err)
		return nil, err
	}

	return product, nil
}
