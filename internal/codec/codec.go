package codec

import (
	"fmt"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

// Codec binds a wire format to its parser/validator and encoder.
type Codec struct {
	Format      domain.Format
	ContentType string
	Parse       func([]byte) (domain.Order, error)
	Encode      func(domain.Order) ([]byte, error)
}

var (
	JSON = Codec{
		Format:      domain.FormatJSON,
		ContentType: "application/json",
		Parse:       ParseJSON,
		Encode:      EncodeJSON,
	}
	XML = Codec{
		Format:      domain.FormatXML,
		ContentType: "application/xml",
		Parse:       ParseXML,
		Encode:      EncodeXML,
	}
)

func ForFormat(f domain.Format) (Codec, error) {
	switch f {
	case domain.FormatJSON:
		return JSON, nil
	case domain.FormatXML:
		return XML, nil
	}
	return Codec{}, fmt.Errorf("no codec for format %q", f)
}
