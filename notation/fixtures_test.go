package notation

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type binaryPayload struct {
	Data []byte
}

func (p binaryPayload) WriteBinary(w io.Writer) error {
	_, err := w.Write(p.Data)
	return err
}

func (p *binaryPayload) ReadBinary(r io.Reader) error {
	data, err := io.ReadAll(r)
	p.Data = data

	return err
}

type countryCode string

func (countryCode) Notations() []Marker {
	return []Marker{MaxLength{N: 2}, ColumnType{Type: "char"}}
}

// sharedNotations has spare capacity so appends to it would write in place.
var sharedNotations = append(make([]Marker, 0, 4), MaxLength{N: 8})

type currencyCode string

func (currencyCode) Notations() []Marker {
	return sharedNotations
}

type audit struct {
	CreatedAt time.Time `notation:"index"`
	UpdatedAt time.Time
}

type customer struct {
	ID      uuid.UUID `notation:"key"`
	Email   string    `notation:"unique;maxlen=320"`
	Country countryCode
	audit
}

func (customer) TableName() string { return "customers" }

type order struct {
	ID         uuid.UUID `notation:"key"`
	CustomerID uuid.UUID `notation:"index=IX_ORDER_CUSTOMER"`
	PlacedAt   time.Time `notation:"index=IX_ORDER_CUSTOMER,order=0"`
	Payload    binaryPayload
}

func (*order) TableName() string { return "orders" }

type orderLine struct {
	OrderID uuid.UUID `notation:"key,order=0"`
	Line    int       `notation:"key,order=1"`
	SKU     string
}

type catalog struct {
	Orders    Table[order]
	Lines     []*orderLine
	Customers map[string]customer
	Count     int
	internal  []orderLine
}
