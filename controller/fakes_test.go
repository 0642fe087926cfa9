package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"eshop/database"
	"eshop/models"
	"eshop/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCategories struct {
	items map[bson.ObjectID]models.Category
	err   error
}

func newFakeCategories(cats ...models.Category) *fakeCategories {
	f := &fakeCategories{items: map[bson.ObjectID]models.Category{}}
	for _, c := range cats {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, f.err
}

func (f *fakeCategories) Get(_ context.Context, id bson.ObjectID) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	c.ID = bson.NewObjectID()
	f.items[c.ID] = *c
	return f.err
}

func (f *fakeCategories) Update(_ context.Context, id bson.ObjectID, c *models.Category) (*models.Category, error) {
	if _, ok := f.items[id]; !ok {
		return nil, database.ErrNotFound
	}
	c.ID = id
	f.items[id] = *c
	return c, nil
}

func (f *fakeCategories) Delete(_ context.Context, id bson.ObjectID) error {
	if _, ok := f.items[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeProducts struct {
	items      map[bson.ObjectID]models.Product
	categories *fakeCategories
	err        error
	lastFilter []bson.ObjectID
	lastLimit  int64
}

func newFakeProducts(categories *fakeCategories, products ...models.Product) *fakeProducts {
	f := &fakeProducts{items: map[bson.ObjectID]models.Product{}, categories: categories}
	for _, p := range products {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) view(p models.Product) models.ProductView {
	v := models.ProductView{Product: p}
	if c, ok := f.categories.items[p.Category]; ok {
		v.CategoryInfo = &c
	}
	return v
}

func (f *fakeProducts) List(_ context.Context, categoryIDs []bson.ObjectID) ([]models.ProductView, error) {
	f.lastFilter = categoryIDs
	out := []models.ProductView{}
	for _, p := range f.items {
		if len(categoryIDs) == 0 || slices.Contains(categoryIDs, p.Category) {
			out = append(out, f.view(p))
		}
	}
	return out, f.err
}

func (f *fakeProducts) Get(_ context.Context, id bson.ObjectID) (*models.ProductView, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	v := f.view(p)
	return &v, nil
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	if f.err != nil {
		return f.err
	}
	p.ID = bson.NewObjectID()
	f.items[p.ID] = *p
	return nil
}

func (f *fakeProducts) Update(_ context.Context, id bson.ObjectID, p *models.Product) (*models.Product, error) {
	old, ok := f.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	p.ID = id
	p.Images = old.Images
	f.items[id] = *p
	return p, nil
}

func (f *fakeProducts) SetGallery(_ context.Context, id bson.ObjectID, images []string) (*models.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	p.Images = images
	f.items[id] = p
	return &p, nil
}

func (f *fakeProducts) Delete(_ context.Context, id bson.ObjectID) error {
	if _, ok := f.items[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) Count(context.Context) (int64, error) {
	return int64(len(f.items)), f.err
}

func (f *fakeProducts) Featured(_ context.Context, limit int64) ([]models.Product, error) {
	f.lastLimit = limit
	out := []models.Product{}
	for _, p := range f.items {
		if p.IsFeatured && (limit == 0 || int64(len(out)) < limit) {
			out = append(out, p)
		}
	}
	return out, f.err
}

type fakeUsers struct {
	items map[bson.ObjectID]models.User
	err   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: map[bson.ObjectID]models.User{}}
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.items {
		out = append(out, u)
	}
	return out, f.err
}

func (f *fakeUsers) Get(_ context.Context, id bson.ObjectID) (*models.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.items {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	u.ID = bson.NewObjectID()
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id bson.ObjectID) error {
	if _, ok := f.items[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	return int64(len(f.items)), f.err
}

// fakeImages fails every Save with err once failAfter saves have succeeded.
type fakeImages struct {
	saved     []string
	removed   []string
	err       error
	failAfter int
}

func (f *fakeImages) Save(_ context.Context, file *multipart.FileHeader, baseURL string) (string, error) {
	if f.err != nil && len(f.saved) >= f.failAfter {
		return "", f.err
	}
	url := baseURL + storage.PublicPath + "/" + file.Filename
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeImages) Remove(_ context.Context, url string) error {
	f.removed = append(f.removed, url)
	return nil
}

type fakeForgetter struct{ forgotten []string }

func (f *fakeForgetter) Forget(_ context.Context, id string) error {
	f.forgotten = append(f.forgotten, id)
	return nil
}

// testRouter mounts the handler without the gate; gate behaviour is covered
// in the middlewares and route packages.
func testRouter(h *Handler) *gin.Engine {
	r := gin.New()
	p := r.Group("/products")
	p.GET("", h.ListProducts)
	p.GET("/:id", h.GetProduct)
	p.GET("/get/count", h.CountProducts)
	p.GET("/get/featured/:count", h.FeaturedProducts)
	p.POST("", h.CreateProduct)
	p.PUT("/:id", h.UpdateProduct)
	p.PUT("/gallery-images/:id", h.UpdateGallery)
	p.DELETE("/:id", h.DeleteProduct)

	c := r.Group("/categories")
	c.GET("", h.ListCategories)
	c.GET("/:id", h.GetCategory)
	c.POST("", h.CreateCategory)
	c.PUT("/:id", h.UpdateCategory)
	c.DELETE("/:id", h.DeleteCategory)

	u := r.Group("/users")
	u.POST("/register", h.Register)
	u.POST("/login", h.Login)
	u.POST("", h.CreateUser)
	u.GET("", h.ListUsers)
	u.GET("/:id", h.GetUser)
	u.GET("/get/count", h.CountUsers)
	u.DELETE("/:id", h.DeleteUser)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type upload struct {
	field, name string
	content     []byte
}

func doMultipart(t *testing.T, r http.Handler, method, target string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	return doMultipartWithHeader(t, r, method, target, nil, fields, files...)
}

func doMultipartWithHeader(t *testing.T, r http.Handler, method, target string, headers, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
