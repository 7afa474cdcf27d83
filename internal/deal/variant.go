package deal

import (
	"propdesk-backend/internal/models"

	"github.com/samber/lo"
)

// Descriptor describes how one deal variant uses the shared deal shape.
type Descriptor struct {
	Variant models.DealVariant
	Label   string
	// Path is the API prefix under /api.
	Path string

	// Money inputs the variant accepts besides the property price. Inputs a variant does not
	// accept are stored absent, so the figures derived from them are absent too.
	ExpectedRent      bool
	AgentRent         bool
	ExpectedSalePrice bool

	// CreatesFolder requests a document folder when a deal is created.
	CreatesFolder bool
}

var descriptors = []Descriptor{
	{
		Variant:       models.VariantIncome,
		Label:         "投資物件",
		Path:          "/properties",
		ExpectedRent:  true,
		AgentRent:     true,
		CreatesFolder: true,
	},
	{
		Variant:   models.VariantBrokerage,
		Label:     "仲介案件",
		Path:      "/brokerage-deals",
		AgentRent: true,
	},
	{
		Variant:           models.VariantResale,
		Label:             "再販案件",
		Path:              "/resale-deals",
		ExpectedRent:      true,
		ExpectedSalePrice: true,
	},
}

// Descriptors lists every variant in display order.
func Descriptors() []Descriptor {
	return append([]Descriptor(nil), descriptors...)
}

func Lookup(v models.DealVariant) (Descriptor, bool) {
	return lo.Find(descriptors, func(d Descriptor) bool { return d.Variant == v })
}
