package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

// element is a parsed XML element. Trees are built once and never mutated.
type element struct {
	name     string
	text     string
	children []*element
}

// ParseXML parses an XML order document, converts its element tree into a generic
// document and runs the same validation as ParseJSON.
func ParseXML(data []byte) (domain.Order, error) {
	root, err := parseTree(data)
	if err != nil {
		return domain.Order{}, err
	}

	doc, violations := defaultTreeRules.toDocument(root)
	if len(violations) > 0 {
		return domain.Order{}, &domain.SchemaValidationError{Violations: violations}
	}
	return fromDocument(doc, domain.FormatXML)
}

func parseTree(data []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		root  *element
		stack []*element
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.XMLParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, &domain.XMLParseError{Err: errors.New("more than one root element")}
			}
			el := &element{name: t.Name.Local}
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			} else if len(bytes.TrimSpace(t)) > 0 {
				return nil, &domain.XMLParseError{Err: errors.New("text outside the root element")}
			}
		}
	}

	if root == nil {
		return nil, &domain.XMLParseError{Err: errors.New("no root element")}
	}
	return root, nil
}

// treeRules drives the tree-to-document conversion.
//
// Elements named in fanOut always become a list with one object per child element,
// regardless of how many children they have. Every other element with children becomes
// a single object keyed by child tag name. Leaves become strings; leaves whose tag is in
// numeric are converted to exact decimals, keeping the raw text when that fails.
type treeRules struct {
	fanOut  map[string]struct{}
	numeric func(tag string) bool
}

var defaultTreeRules = treeRules{
	fanOut:  map[string]struct{}{"items": {}},
	numeric: domain.IsNumericField,
}

func (c treeRules) toDocument(root *element) (map[string]any, []domain.Violation) {
	return c.object(root, "")
}

func (c treeRules) object(el *element, path string) (map[string]any, []domain.Violation) {
	out := make(map[string]any, len(el.children))
	var violations []domain.Violation

	for _, child := range el.children {
		childPath := join(path, child.name)
		if _, dup := out[child.name]; dup {
			violations = append(violations, domain.Violation{
				Path:    childPath,
				Rule:    "duplicateElement",
				Message: "element appears more than once",
			})
			continue
		}

		if _, ok := c.fanOut[child.name]; ok {
			list := make([]any, 0, len(child.children))
			for i, entry := range child.children {
				obj, v := c.object(entry, fmt.Sprintf("%s[%d]", childPath, i))
				violations = append(violations, v...)
				list = append(list, obj)
			}
			out[child.name] = list
			continue
		}

		if len(child.children) > 0 {
			obj, v := c.object(child, childPath)
			violations = append(violations, v...)
			out[child.name] = obj
			continue
		}

		out[child.name] = c.leaf(child)
	}
	return out, violations
}

// leaf keeps text verbatim, as a JSON string would be. Numeric tags are trimmed only
// for the decimal conversion.
func (c treeRules) leaf(el *element) any {
	if !c.numeric(el.name) {
		return el.text
	}
	d, err := domain.ParseDecimal(strings.TrimSpace(el.text))
	if err != nil {
		return el.text
	}
	return d
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

type xmlAddress struct {
	Street     string `xml:"street"`
	City       string `xml:"city"`
	State      string `xml:"state"`
	PostalCode string `xml:"postal_code"`
	Country    string `xml:"country"`
}

type xmlItem struct {
	ProductID   string `xml:"product_id"`
	ProductName string `xml:"product_name"`
	Quantity    int64  `xml:"quantity"`
	UnitPrice   string `xml:"unit_price"`
	Subtotal    string `xml:"subtotal"`
}

type xmlOrder struct {
	XMLName         xml.Name   `xml:"order"`
	ID              string     `xml:"id"`
	CustomerID      string     `xml:"customer_id"`
	CustomerEmail   string     `xml:"customer_email"`
	CustomerName    string     `xml:"customer_name"`
	BillingAddress  xmlAddress `xml:"billing_address"`
	ShippingAddress xmlAddress `xml:"shipping_address"`
	Items           []xmlItem  `xml:"items>item"`
	TotalAmount     string     `xml:"total_amount"`
	PaymentMethod   string     `xml:"payment_method"`
	Status          string     `xml:"status"`
	CreatedAt       string     `xml:"created_at"`
	UpdatedAt       *string    `xml:"updated_at,omitempty"`
	PaymentID       *string    `xml:"payment_id,omitempty"`
	TrackingNumber  *string    `xml:"tracking_number,omitempty"`
	Notes           *string    `xml:"notes,omitempty"`
}

// EncodeXML renders a canonical order as an <order> document that ParseXML accepts.
func EncodeXML(o domain.Order) ([]byte, error) {
	w := xmlOrder{
		ID:              o.ID.String(),
		CustomerID:      o.CustomerID.String(),
		CustomerEmail:   o.CustomerEmail,
		CustomerName:    o.CustomerName,
		BillingAddress:  xmlAddress(o.BillingAddress),
		ShippingAddress: xmlAddress(o.ShippingAddress),
		TotalAmount:     o.TotalAmount.String(),
		PaymentMethod:   string(o.PaymentMethod),
		Status:          string(o.Status),
		CreatedAt:       domain.FormatTimestamp(o.CreatedAt),
		PaymentID:       o.PaymentID,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
	}
	if o.UpdatedAt != nil {
		w.UpdatedAt = lo.ToPtr(domain.FormatTimestamp(*o.UpdatedAt))
	}
	w.Items = lo.Map(o.Items, func(it domain.OrderItem, _ int) xmlItem {
		return xmlItem{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.String(),
			Subtotal:    it.Subtotal.String(),
		}
	})

	b, err := xml.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("xml.Marshal: %w", err)
	}
	return append([]byte(xml.Header), b...), nil
}
