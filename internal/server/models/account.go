package models

// Account is a company the organization does business with.
type Account struct {
	Base
	Name            string `json:"name"`
	Industry        string `json:"industry"`
	Website         string `json:"website"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	OwnerID         string `json:"ownerId"`
	ParentAccountID string `json:"parentAccountId"`
}
