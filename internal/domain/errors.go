package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCity is returned when a city is not part of the world.
	ErrUnknownCity = errors.New("unknown city")

	// ErrUnknownEntity is returned when an entity is not part of the world.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownProduct is returned for products outside the catalog.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrNegativeQuantity is the root of every inventory invariant violation.
	ErrNegativeQuantity = errors.New("negative inventory quantity")

	// ErrNegativePrice is returned for lines priced below zero.
	ErrNegativePrice = errors.New("negative price")

	// ErrNotPlayer is returned when a player action names a non-player entity.
	ErrNotPlayer = errors.New("entity is not the player")

	// ErrNoHolding is returned when a sell order names goods the entity does not hold.
	ErrNoHolding = errors.New("no holding to sell")

	// ErrSameCity is returned for travel whose origin equals its destination.
	ErrSameCity = errors.New("already in destination city")
)

// InvariantError describes an operation that would drive an inventory line below zero.
type InvariantError struct {
	Op      string // "trade.sell", "trade.buy", "order"
	City    CityName
	Entity  EntityID
	Product Product
	Have    int64
	Want    int64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s %s in %s has %d, needs %d: %v",
		e.Op, e.Entity, e.Product, e.City, e.Have, e.Want, ErrNegativeQuantity)
}

func (e *InvariantError) Unwrap() error {
	return ErrNegativeQuantity
}

// IsInvariantViolation checks if err (or any error it wraps) is an inventory invariant break.
func IsInvariantViolation(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie) || errors.Is(err, ErrNegativeQuantity)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
