package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	contractx "github.com/idurar/emily-assistant/agent/contract"
	storex "github.com/idurar/emily-assistant/agent/store"
)

const dateLayout = "2006-01-02"

// dueDateOffset is applied when the model omits a due date.
const dueDateOffset = 7 * 24 * time.Hour

// Executor dispatches validated tool requests to the record store.
// Creation operations are not idempotent: running the same request twice
// creates two records.
type Executor struct {
	store storex.RecordStore
	now   func() time.Time
}

func NewExecutor(store storex.RecordStore) (*Executor, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	return &Executor{store: store, now: time.Now}, nil
}

// WithClock overrides the time source. Used by tests.
func (e *Executor) WithClock(now func() time.Time) *Executor {
	if now != nil {
		e.now = now
	}
	return e
}

// Execute runs one tool invocation: validate, resolve, apply, report.
// Unknown tools and schema violations come back as failed results without
// any store access; only store infrastructure failures surface as errors.
func (e *Executor) Execute(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	def, ok := Lookup(req.Tool)
	if !ok {
		return failure(req.Tool, fmt.Sprintf("unknown tool %q", req.Tool)), nil
	}

	if msg := validateArgs(def, req.Args); msg != "" {
		return failure(req.Tool, msg), nil
	}

	switch def.Name {
	case ToolCreateClient:
		return e.createClient(ctx, req)
	case ToolCreateInvoice:
		return e.createInvoice(ctx, req)
	default:
		return failure(req.Tool, fmt.Sprintf("tool %q is declared but not implemented", req.Tool)), nil
	}
}

func (e *Executor) createClient(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	client := &storex.Client{
		ID:        uuid.NewString(),
		Name:      stringArg(req.Args, "name"),
		Email:     stringArg(req.Args, "email"),
		Phone:     stringArg(req.Args, "phone"),
		Country:   stringArg(req.Args, "country"),
		CreatedAt: e.now().UTC(),
	}

	if err := e.store.CreateClient(ctx, client); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("%w: create client: %v", contractx.ErrStorage, err)
	}

	return contractx.ToolResult{
		Tool:    req.Tool,
		Success: true,
		Message: fmt.Sprintf("Created client %q with id %s.", client.Name, client.ID),
		Data:    client,
	}, nil
}

func (e *Executor) createInvoice(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	clientName := stringArg(req.Args, "clientName")

	client, err := e.store.FindClientByName(ctx, clientName)
	if err != nil {
		if errors.Is(err, storex.ErrClientNotFound) {
			return failure(req.Tool, fmt.Sprintf("client %q not found", clientName)), nil
		}
		return contractx.ToolResult{}, fmt.Errorf("%w: resolve client: %v", contractx.ErrStorage, err)
	}

	price, err := numberArg(req.Args, "price")
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}

	quantity := 1.0
	if _, present := req.Args["quantity"]; present {
		quantity, err = numberArg(req.Args, "quantity")
		if err != nil {
			return failure(req.Tool, err.Error()), nil
		}
		if quantity <= 0 {
			return failure(req.Tool, "quantity must be positive"), nil
		}
	}

	date, err := dateArg(req.Args, "date", e.now().UTC())
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}
	dueDate, err := dateArg(req.Args, "dueDate", date.Add(dueDateOffset))
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}

	item := storex.InvoiceItem{
		ItemName:    stringArg(req.Args, "itemName"),
		Description: stringArg(req.Args, "description"),
		Quantity:    quantity,
		Price:       price,
		Total:       price * quantity,
	}

	number, err := e.store.NextInvoiceNumber(ctx, date.Year())
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("%w: invoice number: %v", contractx.ErrStorage, err)
	}

	invoice := &storex.Invoice{
		ID:          uuid.NewString(),
		Number:      number,
		Year:        date.Year(),
		ClientID:    client.ID,
		Date:        date,
		ExpiredDate: dueDate,
		Items:       []storex.InvoiceItem{item},
		Total:       item.Total,
		Status:      storex.InvoiceStatusDraft,
		Notes:       stringArg(req.Args, "notes"),
		CreatedAt:   e.now().UTC(),
	}

	if err := e.store.CreateInvoice(ctx, invoice); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("%w: create invoice: %v", contractx.ErrStorage, err)
	}

	return contractx.ToolResult{
		Tool:    req.Tool,
		Success: true,
		Message: fmt.Sprintf("Created invoice #%d/%d for %q with total %.2f.", invoice.Number, invoice.Year, client.Name, invoice.Total),
		Data:    invoice,
	}, nil
}

// validateArgs checks required parameters against the declaration. Returns
// an empty string when valid, otherwise a human-readable reason listing
// every missing argument.
func validateArgs(def Definition, args map[string]any) string {
	var missing []string
	for name, param := range def.Params {
		if !param.Required {
			continue
		}
		if stringArg(args, name) == "" {
			if _, present := args[name]; !present {
				missing = append(missing, name)
				continue
			}
			// Present but not a non-empty string: numbers are fine.
			if _, err := numberArg(args, name); err != nil {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) == 0 {
		return ""
	}
	sort.Strings(missing)
	return fmt.Sprintf("missing required arguments: %s", strings.Join(missing, ", "))
}

func failure(tool, msg string) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Success: false, Message: msg}
}

func stringArg(args map[string]any, key string) string {
	raw, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func numberArg(args map[string]any, key string) (float64, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("argument %q is required", key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q must be a number", key)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("argument %q must be a number", key)
	}
}

func dateArg(args map[string]any, key string, fallback time.Time) (time.Time, error) {
	raw := stringArg(args, key)
	if raw == "" {
		return fallback, nil
	}
	if parsed, err := time.Parse(dateLayout, raw); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("argument %q must be a date in YYYY-MM-DD form", key)
}
