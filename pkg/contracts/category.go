package contracts

import (
	"sort"
	"time"

	"gamarriando/pkg/schema"
)

type CategoryBase struct {
	Name            string  `json:"name" validate:"min=1,max=255"`
	Slug            string  `json:"slug" validate:"min=1,max=255"`
	Description     *string `json:"description,omitempty"`
	ImageURL        *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	ParentID        *int64  `json:"parentId,omitempty" validate:"omitempty,gt=0"`
	SortOrder       int     `json:"sortOrder" validate:"min=0"`
	MetaTitle       *string `json:"metaTitle,omitempty" validate:"omitempty,max=255"`
	MetaDescription *string `json:"metaDescription,omitempty"`
}

type CategoryCreate = CategoryBase

type CategoryUpdate struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Slug            *string `json:"slug,omitempty" validate:"omitempty,min=1,max=255"`
	Description     *string `json:"description,omitempty"`
	ImageURL        *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	ParentID        *int64  `json:"parentId,omitempty" validate:"omitempty,gt=0"`
	SortOrder       *int    `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
	MetaTitle       *string `json:"metaTitle,omitempty" validate:"omitempty,max=255"`
	MetaDescription *string `json:"metaDescription,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
}

// CategoryResponse рекурсивна: children имеют ту же форму на любой глубине.
// Циклы (категория среди собственных потомков) должен исключать источник данных.
type CategoryResponse struct {
	CategoryBase
	ID        int64              `json:"id" validate:"gt=0"`
	IsActive  *bool              `json:"isActive" validate:"required"`
	CreatedAt time.Time          `json:"createdAt" validate:"required"`
	UpdatedAt time.Time          `json:"updatedAt" validate:"required"`
	Children  []CategoryResponse `json:"children,omitempty" validate:"omitempty,dive"`
}

var (
	CategoryBaseSchema     = schema.New[CategoryBase]("category.base")
	CategoryCreateSchema   = schema.New[CategoryCreate]("category.create")
	CategoryUpdateSchema   = schema.New[CategoryUpdate]("category.update")
	CategoryResponseSchema = schema.New[CategoryResponse]("category.response")
)

// BuildCategoryTree собирает плоский список в дерево по parentId.
// Категории с неизвестным родителем становятся корнями, порядок - по sortOrder, затем по id.
func BuildCategoryTree(flat []CategoryResponse) []CategoryResponse {
	byParent := make(map[int64][]CategoryResponse, len(flat))
	known := make(map[int64]bool, len(flat))
	for _, c := range flat {
		known[c.ID] = true
	}

	var roots []CategoryResponse
	for _, c := range flat {
		c.Children = nil
		if c.ParentID != nil && known[*c.ParentID] && *c.ParentID != c.ID {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	visited := make(map[int64]bool, len(flat))
	var attach func(nodes []CategoryResponse) []CategoryResponse
	attach = func(nodes []CategoryResponse) []CategoryResponse {
		sortCategories(nodes)
		out := nodes[:0]
		for _, n := range nodes {
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			if children := byParent[n.ID]; len(children) > 0 {
				n.Children = attach(children)
			}
			out = append(out, n)
		}
		return out
	}

	return attach(roots)
}

func sortCategories(nodes []CategoryResponse) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
}
