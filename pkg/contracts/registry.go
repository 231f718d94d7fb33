package contracts

import (
	"errors"
	"fmt"
	"sort"

	"gamarriando/pkg/schema"
)

var ErrUnknownSchema = errors.New("unknown schema")

// Registry - неизменяемый индекс схем по имени. Заполняется один раз
// при инициализации пакета, дальше только читается.
type Registry struct {
	byName map[string]schema.Validator
	names  []string
}

func newRegistry(validators ...schema.Validator) *Registry {
	r := &Registry{byName: make(map[string]schema.Validator, len(validators))}
	for _, v := range validators {
		if _, dup := r.byName[v.Name()]; dup {
			panic(fmt.Sprintf("contracts: schema %q registered twice", v.Name()))
		}
		r.byName[v.Name()] = v
		r.names = append(r.names, v.Name())
	}
	sort.Strings(r.names)
	return r
}

// Lookup возвращает схему по имени
func (r *Registry) Lookup(name string) (schema.Validator, error) {
	v, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return v, nil
}

// Validate разбирает raw схемой name
func (r *Registry) Validate(name string, raw []byte) (any, error) {
	v, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return v.ParseAny(raw)
}

// Names - отсортированный список имен
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Len() int {
	return len(r.names)
}

// Schemas - реестр всех экспортируемых схем пакета
var Schemas = newRegistry(
	PaginationSchema,
	ErrorResponseSchema,
	SuccessResponseSchema,

	UserBaseSchema,
	UserCreateSchema,
	UserUpdateSchema,
	UserResponseSchema,
	UserProfileSchema,
	PaginatedResponseSchema(UserResponseSchema),

	VendorBaseSchema,
	VendorCreateSchema,
	VendorUpdateSchema,
	VendorResponseSchema,
	PaginatedResponseSchema(VendorResponseSchema),

	CategoryBaseSchema,
	CategoryCreateSchema,
	CategoryUpdateSchema,
	CategoryResponseSchema,
	PaginatedResponseSchema(CategoryResponseSchema),

	ProductBaseSchema,
	ProductCreateSchema,
	ProductUpdateSchema,
	ProductResponseSchema,
	ProductImageSchema,
	ProductImageCreateSchema,
	ProductTagSchema,
	ProductTagCreateSchema,
	ProductSearchSchema,
	PaginatedResponseSchema(ProductResponseSchema),

	OrderItemSchema,
	ShippingAddressSchema,
	OrderBaseSchema,
	OrderCreateSchema,
	OrderUpdateSchema,
	OrderResponseSchema,
	PaginatedResponseSchema(OrderResponseSchema),

	PaymentBaseSchema,
	PaymentCreateSchema,
	PaymentUpdateSchema,
	PaymentResponseSchema,
	PaymentIntentSchema,

	NotificationBaseSchema,
	NotificationCreateSchema,
	NotificationUpdateSchema,
	NotificationResponseSchema,
	NotificationTemplateSchema,
	NotificationTemplateCreateSchema,

	APIErrorSchema,
	JwtPayloadSchema,
	LoginRequestSchema,
	LoginResponseSchema,
	HealthCheckSchema,
	ServiceInfoSchema,
)
