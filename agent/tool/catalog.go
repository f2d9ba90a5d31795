package tool

import (
	"github.com/cloudwego/eino/schema"
)

const (
	ToolCreateClient  = "create_client"
	ToolCreateInvoice = "create_invoice"
)

// Definition declares one domain operation: its name, description, and
// typed parameter schema. The parameter map is the single source of truth
// for required arguments; the executor validates against it before any
// store access, independent of what the model actually supplied.
type Definition struct {
	Name   string
	Desc   string
	Params map[string]*schema.ParameterInfo
}

var catalog = []Definition{
	{
		Name: ToolCreateClient,
		Desc: "Register a new client in the CRM.",
		Params: map[string]*schema.ParameterInfo{
			"name":    {Type: schema.String, Desc: "Full client or company name", Required: true},
			"email":   {Type: schema.String, Desc: "Contact email address"},
			"phone":   {Type: schema.String, Desc: "Contact phone number"},
			"country": {Type: schema.String, Desc: "Country of the client"},
		},
	},
	{
		Name: ToolCreateInvoice,
		Desc: "Create an invoice for an existing client. The client is looked up by name.",
		Params: map[string]*schema.ParameterInfo{
			"clientName":  {Type: schema.String, Desc: "Name of the client to invoice, as the user said it", Required: true},
			"itemName":    {Type: schema.String, Desc: "Name of the billed item or service", Required: true},
			"description": {Type: schema.String, Desc: "Optional line item description"},
			"quantity":    {Type: schema.Number, Desc: "Quantity of the item, defaults to 1"},
			"price":       {Type: schema.Number, Desc: "Unit price of the item", Required: true},
			"date":        {Type: schema.String, Desc: "Invoice date in YYYY-MM-DD, defaults to today"},
			"dueDate":     {Type: schema.String, Desc: "Due date in YYYY-MM-DD, defaults to 7 days after the invoice date"},
			"notes":       {Type: schema.String, Desc: "Optional notes on the invoice"},
		},
	},
}

// Catalog returns the registered tool definitions. Registered once at
// startup; callers must not mutate.
func Catalog() []Definition {
	return catalog
}

// Lookup returns the definition for a tool name.
func Lookup(name string) (Definition, bool) {
	for _, def := range catalog {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Infos renders the catalog in the form the chat model binds to.
func Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(catalog))
	for _, def := range catalog {
		infos = append(infos, &schema.ToolInfo{
			Name:        def.Name,
			Desc:        def.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(def.Params),
		})
	}
	return infos
}
