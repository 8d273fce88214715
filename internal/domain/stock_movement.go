package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// MovementID represents a unique identifier for a stock movement
type MovementID struct {
	value string
}

// NewMovementID creates a new unique movement ID
func NewMovementID() MovementID {
	timestamp := time.Now().UTC().Format("20060102150405")
	return MovementID{
		value: fmt.Sprintf("MOV-%s-%s", timestamp, uuid.New().String()[:8]),
	}
}

// ParseMovementID parses a string into a MovementID
func ParseMovementID(s string) (MovementID, error) {
	if s == "" {
		return MovementID{}, errors.New("movement ID cannot be empty")
	}
	return MovementID{value: s}, nil
}

// String returns the string representation
func (id MovementID) String() string {
	return id.value
}

// MarshalBSONValue implements bson.ValueMarshaler
func (id MovementID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(id.value)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler
func (id *MovementID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return bson.UnmarshalValue(t, data, &id.value)
}

// MovementOriginator identifies the kind of business operation that caused a movement
type MovementOriginator string

const (
	OriginatorSupplier      MovementOriginator = "supplier"
	OriginatorOrder         MovementOriginator = "order"
	OriginatorStockTransfer MovementOriginator = "stock_transfer"
	OriginatorAdjustment    MovementOriginator = "adjustment"
)

// IsValid checks if the originator is valid
func (o MovementOriginator) IsValid() bool {
	switch o {
	case OriginatorSupplier, OriginatorOrder, OriginatorStockTransfer, OriginatorAdjustment:
		return true
	default:
		return false
	}
}

// StockMovement is an immutable ledger entry recording one quantity change
// for one variant at one location. Movements are only appended, never
// mutated or deleted; current counts are reconstructible from them.
type StockMovement struct {
	MovementID   MovementID         `bson:"movementId" json:"movementId"`
	VariantID    string             `bson:"variantId" json:"variantId"`
	Quantity     int                `bson:"quantity" json:"quantity"` // signed delta
	Originator   MovementOriginator `bson:"originator" json:"originator"`
	OriginatorID string             `bson:"originatorId,omitempty" json:"originatorId,omitempty"`
	Reason       string             `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewStockMovement creates a new stock movement record
func NewStockMovement(variantID string, quantity int, originator MovementOriginator, originatorID, reason string) (*StockMovement, error) {
	if variantID == "" {
		return nil, ErrVariantRequired
	}
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	if !originator.IsValid() {
		return nil, fmt.Errorf("invalid movement originator: %q", originator)
	}

	return &StockMovement{
		MovementID:   NewMovementID(),
		VariantID:    variantID,
		Quantity:     quantity,
		Originator:   originator,
		OriginatorID: originatorID,
		Reason:       reason,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
