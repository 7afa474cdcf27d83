package deal

import (
	"encoding/json"
	"fmt"

	"propdesk-backend/internal/finance"

	"github.com/samber/mo"
	"github.com/tidwall/gjson"
)

// Input is a deal form after schema validation. Money values are still raw
// (nil, json.Number or string); the service normalizes them.
type Input struct {
	Code            mo.Option[string]
	PropertyAddress mo.Option[string]
	Note            mo.Option[string]

	PropertyPrice     any
	ExpectedRent      any
	AgentRent         any
	ExpectedSalePrice any

	Expenses []finance.RawExpense
}

const (
	fieldCode              = "code"
	fieldPropertyAddress   = "property_address"
	fieldNote              = "note"
	fieldPropertyPrice     = "property_price"
	fieldExpectedRent      = "expected_rent"
	fieldAgentRent         = "agent_rent"
	fieldExpectedSalePrice = "expected_sale_price"
	fieldExpenses          = "expenses"
)

// ParseInput checks a JSON request body against the deal schema:
//
//	code, property_address, note          string | null
//	property_price, expected_rent,
//	agent_rent, expected_sale_price       number | string | null
//	expenses                              [{name: string | null, price: number | string | null}] | null
//
// Unknown fields are ignored. A string amount that does not parse is not a schema violation;
// it becomes an absent amount later.
func ParseInput(body []byte) (Input, error) {
	if !gjson.ValidBytes(body) {
		ve := &ValidationError{}
		ve.Add("body", "is not valid JSON")
		return Input{}, ve
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		ve := &ValidationError{}
		ve.Add("body", "must be a JSON object")
		return Input{}, ve
	}

	ve := &ValidationError{}
	in := Input{
		Code:              stringField(root, fieldCode, ve),
		PropertyAddress:   stringField(root, fieldPropertyAddress, ve),
		Note:              stringField(root, fieldNote, ve),
		PropertyPrice:     amountField(root.Get(fieldPropertyPrice), fieldPropertyPrice, ve),
		ExpectedRent:      amountField(root.Get(fieldExpectedRent), fieldExpectedRent, ve),
		AgentRent:         amountField(root.Get(fieldAgentRent), fieldAgentRent, ve),
		ExpectedSalePrice: amountField(root.Get(fieldExpectedSalePrice), fieldExpectedSalePrice, ve),
		Expenses:          expensesField(root.Get(fieldExpenses), ve),
	}
	if err := ve.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// stringField is None when the key is missing; null reads as an empty string.
func stringField(root gjson.Result, name string, ve *ValidationError) mo.Option[string] {
	res := root.Get(name)
	if !res.Exists() {
		return mo.None[string]()
	}
	switch res.Type {
	case gjson.String:
		return mo.Some(res.Str)
	case gjson.Null:
		return mo.Some("")
	default:
		ve.Add(name, "must be a string")
		return mo.None[string]()
	}
}

func amountField(res gjson.Result, name string, ve *ValidationError) any {
	if !res.Exists() {
		return nil
	}
	switch res.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		return json.Number(res.Raw)
	case gjson.String:
		return res.Str
	default:
		ve.Add(name, "must be a number or a string")
		return nil
	}
}

func expensesField(res gjson.Result, ve *ValidationError) []finance.RawExpense {
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	if !res.IsArray() {
		ve.Add(fieldExpenses, "must be an array")
		return nil
	}

	items := res.Array()
	out := make([]finance.RawExpense, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", fieldExpenses, i)
		if !item.IsObject() {
			ve.Add(field, "must be an object")
			continue
		}
		var name string
		switch n := item.Get("name"); n.Type {
		case gjson.String:
			name = n.Str
		case gjson.Null:
		default:
			ve.Add(field+".name", "must be a string")
		}
		out = append(out, finance.RawExpense{
			Name:  name,
			Price: amountField(item.Get("price"), field+".price", ve),
		})
	}
	return out
}
