package domain

import "github.com/google/uuid"

// Typed identifiers. Each wraps a random UUID; equality is by value.

type OrderID struct{ value uuid.UUID }

func NewOrderID() OrderID { return OrderID{value: uuid.New()} }

func ParseOrderID(s string) (OrderID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return OrderID{}, err
	}
	return OrderID{value: u}, nil
}

func (id OrderID) String() string { return id.value.String() }

type CustomerID struct{ value uuid.UUID }

func NewCustomerID() CustomerID { return CustomerID{value: uuid.New()} }

func ParseCustomerID(s string) (CustomerID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CustomerID{}, err
	}
	return CustomerID{value: u}, nil
}

func (id CustomerID) String() string { return id.value.String() }

type ProductID struct{ value uuid.UUID }

func NewProductID() ProductID { return ProductID{value: uuid.New()} }

func ParseProductID(s string) (ProductID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ProductID{}, err
	}
	return ProductID{value: u}, nil
}

func (id ProductID) String() string { return id.value.String() }
