package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/lifecycle"
	"electron-shop/api/pkg/models"
	"electron-shop/api/pkg/repository"
	"electron-shop/api/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeDB is an in-memory stand-in for the three collections. WithTransaction
// restores a snapshot when fn fails.
type fakeDB struct {
	mu            sync.Mutex
	categories    map[primitive.ObjectID]models.Category
	subcategories map[primitive.ObjectID]models.Subcategory
	products      map[primitive.ObjectID]models.Product

	// staleWrites makes the next n guarded writes report a stale version.
	staleWrites int
	// insertErr is returned by the next product insert.
	insertErr error
	// transactions counts WithTransaction calls.
	transactions int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		categories:    map[primitive.ObjectID]models.Category{},
		subcategories: map[primitive.ObjectID]models.Subcategory{},
		products:      map[primitive.ObjectID]models.Product{},
	}
}

func (db *fakeDB) stale() bool {
	if db.staleWrites > 0 {
		db.staleWrites--
		return true
	}
	return false
}

func copyProduct(p models.Product) models.Product {
	variants := make([]models.Variant, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = cloneVariant(v)
	}
	p.Variants = variants
	return p
}

func (db *fakeDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	db.mu.Lock()
	db.transactions++
	cats := map[primitive.ObjectID]models.Category{}
	for k, v := range db.categories {
		cats[k] = v
	}
	subs := map[primitive.ObjectID]models.Subcategory{}
	for k, v := range db.subcategories {
		subs[k] = v
	}
	prods := map[primitive.ObjectID]models.Product{}
	for k, v := range db.products {
		prods[k] = copyProduct(v)
	}
	db.mu.Unlock()

	if err := fn(ctx); err != nil {
		db.mu.Lock()
		db.categories, db.subcategories, db.products = cats, subs, prods
		db.mu.Unlock()
		return err
	}
	return nil
}

type fakeCategories struct{ db *fakeDB }

func (r fakeCategories) Insert(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.categories {
		if existing.Slug == c.Slug || existing.Path == c.Path {
			return repository.ErrDuplicate
		}
	}
	r.db.categories[c.ID] = *c
	return nil
}

func (r fakeCategories) find(match func(models.Category) bool) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.categories {
		if match(c) {
			found := c
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r fakeCategories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return r.find(func(c models.Category) bool { return c.ID == id })
}

func (r fakeCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.find(func(c models.Category) bool { return c.Slug == slug })
}

func (r fakeCategories) FindByPath(ctx context.Context, path string) (*models.Category, error) {
	return r.find(func(c models.Category) bool { return c.Path == path })
}

func (r fakeCategories) FindAll(ctx context.Context) ([]models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Category
	for _, c := range r.db.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r fakeCategories) NameExists(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	_, err := r.find(func(c models.Category) bool { return c.ID != exclude && strings.EqualFold(c.Name, name) })
	return err == nil, nil
}

func (r fakeCategories) SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error) {
	_, err := r.find(func(c models.Category) bool { return c.ID != exclude && (c.Slug == slug || c.Path == path) })
	return err == nil, nil
}

func (r fakeCategories) Replace(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.categories[c.ID]
	if !ok || stored.Version != c.Version || r.db.stale() {
		return repository.ErrStale
	}
	c.Version++
	r.db.categories[c.ID] = *c
	return nil
}

func (r fakeCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.categories, id)
	return nil
}

type fakeSubcategories struct{ db *fakeDB }

func (r fakeSubcategories) Insert(ctx context.Context, s *models.Subcategory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.subcategories {
		if existing.Slug == s.Slug || existing.Path == s.Path {
			return repository.ErrDuplicate
		}
	}
	r.db.subcategories[s.ID] = *s
	return nil
}

func (r fakeSubcategories) find(match func(models.Subcategory) bool) (*models.Subcategory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.subcategories {
		if match(s) {
			found := s
			if s.Image != nil {
				img := *s.Image
				found.Image = &img
			}
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r fakeSubcategories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subcategory, error) {
	return r.find(func(s models.Subcategory) bool { return s.ID == id })
}

func (r fakeSubcategories) FindBySlug(ctx context.Context, slug string) (*models.Subcategory, error) {
	return r.find(func(s models.Subcategory) bool { return s.Slug == slug })
}

func (r fakeSubcategories) FindByPath(ctx context.Context, path string) (*models.Subcategory, error) {
	return r.find(func(s models.Subcategory) bool { return s.Path == path })
}

func (r fakeSubcategories) FindAll(ctx context.Context, categoryID *primitive.ObjectID) ([]models.Subcategory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Subcategory
	for _, s := range r.db.subcategories {
		if categoryID == nil || s.CategoryID == *categoryID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r fakeSubcategories) NameExists(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	_, err := r.find(func(s models.Subcategory) bool { return s.ID != exclude && strings.EqualFold(s.Name, name) })
	return err == nil, nil
}

func (r fakeSubcategories) SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error) {
	_, err := r.find(func(s models.Subcategory) bool { return s.ID != exclude && (s.Slug == slug || s.Path == path) })
	return err == nil, nil
}

func (r fakeSubcategories) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	subs, _ := r.FindAll(ctx, &categoryID)
	return int64(len(subs)), nil
}

func (r fakeSubcategories) RewritePathPrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, s := range r.db.subcategories {
		if !strings.HasPrefix(s.Path, oldPrefix+"/") {
			continue
		}
		s.Path, _ = catalog.RebasePath(s.Path, oldPrefix, newPrefix)
		r.db.subcategories[id] = s
		n++
	}
	return n, nil
}

func (r fakeSubcategories) Replace(ctx context.Context, s *models.Subcategory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.subcategories[s.ID]
	if !ok || stored.Version != s.Version || r.db.stale() {
		return repository.ErrStale
	}
	s.Version++
	r.db.subcategories[s.ID] = *s
	return nil
}

func (r fakeSubcategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.subcategories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.subcategories, id)
	return nil
}

type fakeProducts struct{ db *fakeDB }

func (r fakeProducts) Insert(ctx context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.insertErr; err != nil {
		r.db.insertErr = nil
		return err
	}
	for _, existing := range r.db.products {
		if existing.Slug == p.Slug || existing.Path == p.Path {
			return repository.ErrDuplicate
		}
	}
	r.db.products[p.ID] = copyProduct(*p)
	return nil
}

func (r fakeProducts) find(match func(models.Product) bool) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.products {
		if match(p) {
			found := copyProduct(p)
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r fakeProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.ID == id })
}

func (r fakeProducts) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.Slug == slug })
}

func (r fakeProducts) FindByPath(ctx context.Context, path string) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.Path == path })
}

// Find honours the category, brand and exclude filters, newest first.
func (r fakeProducts) Find(ctx context.Context, f models.ProductFilter, page catalog.PageRequest) ([]models.Product, int64, error) {
	r.db.mu.Lock()
	var all []models.Product
	for _, p := range r.db.products {
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.BrandID != nil && p.BrandID != *f.BrandID {
			continue
		}
		if f.ExcludeID != nil && p.ID == *f.ExcludeID {
			continue
		}
		all = append(all, copyProduct(p))
	}
	r.db.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	page = page.Normalize()
	start := int(page.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r fakeProducts) SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error) {
	_, err := r.find(func(p models.Product) bool { return p.ID != exclude && (p.Slug == slug || p.Path == path) })
	return err == nil, nil
}

func (r fakeProducts) CountByBrand(ctx context.Context, brandID primitive.ObjectID) (int64, error) {
	_, total, _ := r.Find(ctx, models.ProductFilter{BrandID: &brandID}, catalog.PageRequest{})
	return total, nil
}

func (r fakeProducts) RewritePathPrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, p := range r.db.products {
		if !strings.HasPrefix(p.Path, oldPrefix+"/") {
			continue
		}
		p.Path, _ = catalog.RebasePath(p.Path, oldPrefix, newPrefix)
		r.db.products[id] = p
		n++
	}
	return n, nil
}

func (r fakeProducts) ReassignCategory(ctx context.Context, brandID, categoryID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, p := range r.db.products {
		if p.BrandID == brandID {
			p.CategoryID = categoryID
			r.db.products[id] = p
			n++
		}
	}
	return n, nil
}

func (r fakeProducts) Replace(ctx context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.products[p.ID]
	if !ok || stored.Version != p.Version || r.db.stale() {
		return repository.ErrStale
	}
	p.Version++
	r.db.products[p.ID] = copyProduct(*p)
	return nil
}

func (r fakeProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.products, id)
	return nil
}

// guarded applies fn to the stored product when version matches and returns
// the result.
func (r fakeProducts) guarded(productID primitive.ObjectID, version int64, fn func(p *models.Product) bool) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[productID]
	if !ok || (version >= 0 && p.Version != version) || r.db.stale() {
		return nil, repository.ErrStale
	}
	p = copyProduct(p)
	if !fn(&p) {
		return nil, repository.ErrStale
	}
	p.Version++
	p.UpdatedAt = time.Now()
	r.db.products[productID] = p
	out := copyProduct(p)
	return &out, nil
}

func (r fakeProducts) ReplaceVariant(ctx context.Context, productID primitive.ObjectID, version int64, variant models.Variant) (*models.Product, error) {
	return r.guarded(productID, version, func(p *models.Product) bool {
		_, i := p.Variant(variant.ID)
		if i < 0 {
			return false
		}
		p.Variants[i] = cloneVariant(variant)
		return true
	})
}

func (r fakeProducts) PushVariant(ctx context.Context, productID primitive.ObjectID, version int64, variant models.Variant) (*models.Product, error) {
	return r.guarded(productID, version, func(p *models.Product) bool {
		p.Variants = append(p.Variants, cloneVariant(variant))
		return true
	})
}

func (r fakeProducts) PullVariant(ctx context.Context, productID primitive.ObjectID, version int64, variantID primitive.ObjectID) (*models.Product, error) {
	return r.guarded(productID, version, func(p *models.Product) bool {
		_, i := p.Variant(variantID)
		if i < 0 {
			return false
		}
		p.Variants = append(p.Variants[:i], p.Variants[i+1:]...)
		return true
	})
}

func (r fakeProducts) AppendVariantImages(ctx context.Context, productID, variantID primitive.ObjectID, urls []string) (*models.Product, error) {
	r.db.mu.Lock()
	_, ok := r.db.products[productID]
	r.db.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	out, err := r.guarded(productID, -1, func(p *models.Product) bool {
		v, _ := p.Variant(variantID)
		if v == nil {
			return false
		}
		v.Images = lifecycle.Append(v.Images, urls)
		return true
	})
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return out, nil
}

// fixture wires the three services over one fakeDB and a memory storage.
type fixture struct {
	db            *fakeDB
	store         *storage.MemoryStorage
	categories    CategoryService
	subcategories SubcategoryService
	products      ProductService
}

func newFixture() *fixture {
	db := newFakeDB()
	store := storage.NewMemoryStorage()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	deps := Dependencies{
		Categories:    fakeCategories{db},
		Subcategories: fakeSubcategories{db},
		Products:      fakeProducts{db},
		Tx:            db,
		Storage:       store,
		Cleaner:       lifecycle.NewSyncCleaner(store),
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	}
	return &fixture{
		db:            db,
		store:         store,
		categories:    NewCategoryService(deps),
		subcategories: NewSubcategoryService(deps),
		products:      NewProductService(deps),
	}
}

func pngUpload(name string) storage.Upload {
	body := "\x89PNG fake image " + name
	return storage.Upload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

func float(v float64) *float64 { return &v }

func str(v string) *string { return &v }
