package contracts

import (
	"time"

	"gamarriando/pkg/schema"
)

// VendorBase - бизнес-реквизиты продавца.
// Флаги isActive/isVerified в теле создания отсутствуют: продавец
// начинает непроверенным и меняет статус только через Update.
type VendorBase struct {
	Name         string  `json:"name" validate:"min=1,max=255"`
	Email        string  `json:"email" validate:"email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Description  *string `json:"description,omitempty"`
	Website      *string `json:"website,omitempty" validate:"omitempty,url"`
	LogoURL      *string `json:"logoUrl,omitempty" validate:"omitempty,url"`
	BusinessName *string `json:"businessName,omitempty" validate:"omitempty,max=255"`
	BusinessType *string `json:"businessType,omitempty" validate:"omitempty,max=100"`
	TaxID        *string `json:"taxId,omitempty" validate:"omitempty,max=100"`
	AddressLine1 *string `json:"addressLine1,omitempty" validate:"omitempty,max=255"`
	AddressLine2 *string `json:"addressLine2,omitempty" validate:"omitempty,max=255"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	Country      *string `json:"country,omitempty" validate:"omitempty,max=100"`
}

type VendorCreate = VendorBase

type VendorUpdate struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Description  *string `json:"description,omitempty"`
	Website      *string `json:"website,omitempty" validate:"omitempty,url"`
	LogoURL      *string `json:"logoUrl,omitempty" validate:"omitempty,url"`
	BusinessName *string `json:"businessName,omitempty" validate:"omitempty,max=255"`
	BusinessType *string `json:"businessType,omitempty" validate:"omitempty,max=100"`
	TaxID        *string `json:"taxId,omitempty" validate:"omitempty,max=100"`
	AddressLine1 *string `json:"addressLine1,omitempty" validate:"omitempty,max=255"`
	AddressLine2 *string `json:"addressLine2,omitempty" validate:"omitempty,max=255"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	Country      *string `json:"country,omitempty" validate:"omitempty,max=100"`
	IsActive     *bool   `json:"isActive,omitempty"`
	IsVerified   *bool   `json:"isVerified,omitempty"`
}

type VendorResponse struct {
	VendorBase
	ID         int64     `json:"id" validate:"gt=0"`
	IsActive   *bool     `json:"isActive" validate:"required"`
	IsVerified *bool     `json:"isVerified" validate:"required"`
	CreatedAt  time.Time `json:"createdAt" validate:"required"`
	UpdatedAt  time.Time `json:"updatedAt" validate:"required"`
}

var (
	VendorBaseSchema     = schema.New[VendorBase]("vendor.base")
	VendorCreateSchema   = schema.New[VendorCreate]("vendor.create")
	VendorUpdateSchema   = schema.New[VendorUpdate]("vendor.update")
	VendorResponseSchema = schema.New[VendorResponse]("vendor.response")
)
