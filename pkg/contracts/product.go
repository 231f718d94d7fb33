package contracts

import (
	"strings"
	"time"

	"gamarriando/pkg/schema"
)

type ProductStatus string

const (
	ProductStatusDraft        ProductStatus = "draft"
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusOutOfStock   ProductStatus = "out_of_stock"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

var productStatuses = schema.Members[ProductStatus]{
	ProductStatusDraft, ProductStatusActive, ProductStatusInactive,
	ProductStatusOutOfStock, ProductStatusDiscontinued,
}

func (s ProductStatus) Valid() bool    { return productStatuses.Contains(s) }
func (ProductStatus) Values() []string { return productStatuses.Strings() }

type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
	ProductTypeBundle   ProductType = "bundle"
	ProductTypeDigital  ProductType = "digital"
)

var productTypes = schema.Members[ProductType]{
	ProductTypeSimple, ProductTypeVariable, ProductTypeBundle, ProductTypeDigital,
}

func (t ProductType) Valid() bool    { return productTypes.Contains(t) }
func (ProductType) Values() []string { return productTypes.Strings() }

// ProductBase - карточка товара без идентификаторов и связей
type ProductBase struct {
	Name              string         `json:"name" validate:"min=1,max=255"`
	Slug              string         `json:"slug" validate:"min=1,max=255"`
	Description       *string        `json:"description,omitempty"`
	ShortDescription  *string        `json:"shortDescription,omitempty"`
	SKU               string         `json:"sku" validate:"min=1,max=100"`
	ProductType       ProductType    `json:"productType" validate:"enum"`
	Status            ProductStatus  `json:"status" validate:"enum"`
	Price             float64        `json:"price" validate:"gt=0"`
	CompareAtPrice    *float64       `json:"compareAtPrice,omitempty" validate:"omitempty,gt=0"`
	CostPrice         *float64       `json:"costPrice,omitempty" validate:"omitempty,gt=0"`
	TrackInventory    bool           `json:"trackInventory"`
	InventoryQuantity float64        `json:"inventoryQuantity" validate:"min=0"`
	LowStockThreshold float64        `json:"lowStockThreshold" validate:"min=0"`
	AllowBackorder    bool           `json:"allowBackorder"`
	Weight            *float64       `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Length            *float64       `json:"length,omitempty" validate:"omitempty,gt=0"`
	Width             *float64       `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height            *float64       `json:"height,omitempty" validate:"omitempty,gt=0"`
	MetaTitle         *string        `json:"metaTitle,omitempty" validate:"omitempty,max=255"`
	MetaDescription   *string        `json:"metaDescription,omitempty"`
	Attributes        map[string]any `json:"attributes,omitempty"`
}

func defaultProductBase() ProductBase {
	return ProductBase{
		ProductType:       ProductTypeSimple,
		Status:            ProductStatusDraft,
		TrackInventory:    true,
		InventoryQuantity: 0,
		LowStockThreshold: 5,
		AllowBackorder:    false,
	}
}

// InStock - товар можно заказать прямо сейчас
func (p ProductBase) InStock() bool {
	return !p.TrackInventory || p.AllowBackorder || p.InventoryQuantity > 0
}

// LowStock - остаток учитывается и не выше порога
func (p ProductBase) LowStock() bool {
	return p.TrackInventory && p.InventoryQuantity <= p.LowStockThreshold
}

type ProductCreate struct {
	ProductBase
	VendorID    int64   `json:"vendorId" validate:"gt=0"`
	CategoryIDs []int64 `json:"categoryIds" validate:"dive,gt=0"`
}

type ProductUpdate struct {
	Name              *string        `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Slug              *string        `json:"slug,omitempty" validate:"omitempty,min=1,max=255"`
	Description       *string        `json:"description,omitempty"`
	ShortDescription  *string        `json:"shortDescription,omitempty"`
	SKU               *string        `json:"sku,omitempty" validate:"omitempty,min=1,max=100"`
	ProductType       *ProductType   `json:"productType,omitempty" validate:"omitempty,enum"`
	Status            *ProductStatus `json:"status,omitempty" validate:"omitempty,enum"`
	Price             *float64       `json:"price,omitempty" validate:"omitempty,gt=0"`
	CompareAtPrice    *float64       `json:"compareAtPrice,omitempty" validate:"omitempty,gt=0"`
	CostPrice         *float64       `json:"costPrice,omitempty" validate:"omitempty,gt=0"`
	TrackInventory    *bool          `json:"trackInventory,omitempty"`
	InventoryQuantity *float64       `json:"inventoryQuantity,omitempty" validate:"omitempty,min=0"`
	LowStockThreshold *float64       `json:"lowStockThreshold,omitempty" validate:"omitempty,min=0"`
	AllowBackorder    *bool          `json:"allowBackorder,omitempty"`
	Weight            *float64       `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Length            *float64       `json:"length,omitempty" validate:"omitempty,gt=0"`
	Width             *float64       `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height            *float64       `json:"height,omitempty" validate:"omitempty,gt=0"`
	MetaTitle         *string        `json:"metaTitle,omitempty" validate:"omitempty,max=255"`
	MetaDescription   *string        `json:"metaDescription,omitempty"`
	Attributes        map[string]any `json:"attributes,omitempty"`
	CategoryIDs       []int64        `json:"categoryIds,omitempty" validate:"omitempty,dive,gt=0"`
}

// ProductResponse встраивает связанные ресурсы в свободной форме,
// их структура на этом уровне не проверяется.
type ProductResponse struct {
	ProductBase
	ID         int64     `json:"id" validate:"gt=0"`
	VendorID   int64     `json:"vendorId" validate:"gt=0"`
	CreatedAt  time.Time `json:"createdAt" validate:"required"`
	UpdatedAt  time.Time `json:"updatedAt" validate:"required"`
	Vendor     any       `json:"vendor,omitempty"`
	Categories []any     `json:"categories,omitempty"`
	Images     []any     `json:"images,omitempty"`
	Tags       []any     `json:"tags,omitempty"`
}

type ProductImageCreate struct {
	ImageURL  string  `json:"imageUrl" validate:"url"`
	AltText   *string `json:"altText,omitempty"`
	SortOrder int     `json:"sortOrder" validate:"min=0"`
	IsPrimary bool    `json:"isPrimary"`
}

type ProductImage struct {
	ProductImageCreate
	ID        int64     `json:"id" validate:"gt=0"`
	ProductID int64     `json:"productId" validate:"gt=0"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}

type ProductTagCreate struct {
	Name  string  `json:"name" validate:"min=1,max=100"`
	Value *string `json:"value,omitempty" validate:"omitempty,max=255"`
}

type ProductTag struct {
	ProductTagCreate
	ID        int64     `json:"id" validate:"gt=0"`
	ProductID int64     `json:"productId" validate:"gt=0"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}

// ProductSearch - фильтр выборки, а не ресурс. Любое поле может отсутствовать;
// присутствующие условия объединяются по И.
type ProductSearch struct {
	Query       *string        `json:"query,omitempty"`
	CategoryIDs []int64        `json:"categoryIds,omitempty" validate:"omitempty,dive,gt=0"`
	VendorIDs   []int64        `json:"vendorIds,omitempty" validate:"omitempty,dive,gt=0"`
	MinPrice    *float64       `json:"minPrice,omitempty" validate:"omitempty,min=0"`
	MaxPrice    *float64       `json:"maxPrice,omitempty" validate:"omitempty,min=0"`
	Status      *ProductStatus `json:"status,omitempty" validate:"omitempty,enum"`
	InStock     *bool          `json:"inStock,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// Matches применяет фильтр к товару. Категории и теги товара передаются
// отдельно, так как в ответе они встроены без фиксированной формы.
// Поиск по categoryIds/tags требует хотя бы одного совпадения.
func (s ProductSearch) Matches(p ProductResponse, categoryIDs []int64, tags []string) bool {
	if s.Query != nil {
		if q := strings.ToLower(strings.TrimSpace(*s.Query)); q != "" && !productContains(p, q) {
			return false
		}
	}
	if len(s.CategoryIDs) > 0 && !intersects(s.CategoryIDs, categoryIDs) {
		return false
	}
	if len(s.VendorIDs) > 0 && !intersects(s.VendorIDs, []int64{p.VendorID}) {
		return false
	}
	if s.MinPrice != nil && p.Price < *s.MinPrice {
		return false
	}
	if s.MaxPrice != nil && p.Price > *s.MaxPrice {
		return false
	}
	if s.Status != nil && p.Status != *s.Status {
		return false
	}
	if s.InStock != nil && p.InStock() != *s.InStock {
		return false
	}
	if len(s.Tags) > 0 && !intersectsFold(s.Tags, tags) {
		return false
	}
	return true
}

func productContains(p ProductResponse, q string) bool {
	fields := []string{p.Name, p.SKU}
	if p.Description != nil {
		fields = append(fields, *p.Description)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func intersects(want, have []int64) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func intersectsFold(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}

var (
	ProductBaseSchema = schema.New[ProductBase]("product.base", schema.WithDefaults(defaultProductBase))

	ProductCreateSchema = schema.New[ProductCreate]("product.create",
		schema.WithDefaults(func() ProductCreate {
			return ProductCreate{ProductBase: defaultProductBase(), CategoryIDs: []int64{}}
		}))

	ProductUpdateSchema = schema.New[ProductUpdate]("product.update")

	ProductResponseSchema = schema.New[ProductResponse]("product.response",
		schema.WithDefaults(func() ProductResponse { return ProductResponse{ProductBase: defaultProductBase()} }))

	ProductImageCreateSchema = schema.New[ProductImageCreate]("product_image.create")
	ProductImageSchema       = schema.New[ProductImage]("product_image")
	ProductTagCreateSchema   = schema.New[ProductTagCreate]("product_tag.create")
	ProductTagSchema         = schema.New[ProductTag]("product_tag")

	ProductSearchSchema = schema.New[ProductSearch]("product.search",
		schema.WithRefinement("maxPrice", "price_range", "maxPrice must not be less than minPrice",
			func(s ProductSearch) bool {
				return s.MinPrice == nil || s.MaxPrice == nil || *s.MaxPrice >= *s.MinPrice
			}))
)
